// Package server provides the MCP server context, health probes, and the
// dedicated Prometheus metrics listener.
//
// ServerContext wires the credential manager, tool registry, dispatcher,
// and telemetry provider together and owns the shutdown lifecycle.
//
// HealthChecker exposes Kubernetes-style probes: /healthz (liveness),
// /readyz (readiness, unhealthy when the credential is revoked or the
// server is shutting down), and /healthz/detailed (uptime, read-only
// mode, auth state, and the most recent Google API failure).
//
// MetricsServer serves /metrics on its own port so operational metrics
// never share a listener with MCP traffic.
package server
