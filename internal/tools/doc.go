// Package tools defines the catalog of Calendar and Meet tools exposed
// over MCP.
//
// Each tool is a dispatch.Descriptor pairing a validation schema with a
// handler that calls the matching provider client method. The catalog is
// the single source of truth: the MCP input schemas advertised to agents
// are derived from the same validate.Schema values the dispatcher
// enforces, and read-only mode filters the catalog by the descriptor's
// ReadOnly flag.
package tools
