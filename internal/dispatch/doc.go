// Package dispatch routes MCP tool calls through the shared pipeline:
// registry lookup, schema validation, token acquisition, adapter
// invocation, and error classification.
//
// The pipeline rejects unknown tools and invalid arguments before any
// token or network activity. When a provider call fails with an
// authentication error despite a cached token, the dispatcher forces one
// token refresh and retries the call exactly once; every other failure is
// classified and returned without retry. Each call produces one structured
// log record and one metrics event.
package dispatch
