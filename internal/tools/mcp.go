package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmeet/calmeet/internal/dispatch"
	"github.com/calmeet/calmeet/internal/instrumentation"
	"github.com/calmeet/calmeet/internal/validate"
)

// Register adds every catalog tool to the MCP server, routing each call
// through the dispatcher. In read-only mode mutating tools are left out
// of the catalog entirely; the dispatcher gate behind them stays as a
// second line of defense. The audit logger may be nil when audit logging
// is disabled.
func Register(s *mcpserver.MCPServer, registry *dispatch.Registry, d *dispatch.Dispatcher, audit *instrumentation.AuditLogger) {
	for _, desc := range registry.Descriptors() {
		if d.ReadOnly() && !desc.ReadOnly {
			continue
		}

		s.AddTool(mcp.NewTool(desc.Name, toolOptions(desc)...),
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				ctx, span := instrumentation.StartToolSpan(ctx, desc.Name)
				defer span.End()

				inv := instrumentation.NewToolInvocation(desc.Name).
					WithService(desc.Category, desc.Operation).
					WithSpanContext(ctx)

				env := d.Dispatch(ctx, desc.Name, request.GetArguments())
				if env.OK {
					inv.CompleteSuccess()
					instrumentation.SetSpanSuccess(span)
				} else {
					inv.CompleteWithError(string(env.Error.Kind), env.Error)
					instrumentation.SetSpanError(span, env.Error)
				}
				if audit != nil {
					audit.LogToolInvocation(inv)
				}

				return toToolResult(env)
			})
	}
}

// toToolResult serializes an envelope into an MCP tool result. Failures
// become isError content carrying the classified error as JSON so agents
// can branch on the kind.
func toToolResult(env dispatch.Envelope) (*mcp.CallToolResult, error) {
	if !env.OK {
		payload, err := json.Marshal(env.Error)
		if err != nil {
			return mcp.NewToolResultError(env.Error.Error()), nil
		}
		return mcp.NewToolResultError(string(payload)), nil
	}

	payload, err := json.MarshalIndent(env.Data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// toolOptions derives the MCP tool declaration from the descriptor's
// validation schema, so the advertised input schema and the enforced one
// can never drift apart.
func toolOptions(desc *dispatch.Descriptor) []mcp.ToolOption {
	opts := []mcp.ToolOption{mcp.WithDescription(desc.Description)}
	for _, f := range desc.Schema.Fields {
		opts = append(opts, fieldOption(f))
	}
	return opts
}

func fieldOption(f validate.Field) mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(f.Description)}
	if f.Required {
		props = append(props, mcp.Required())
	}

	switch f.Type {
	case validate.TypeBool:
		if def, ok := f.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(def))
		}
		return mcp.WithBoolean(f.Name, props...)

	case validate.TypeInt:
		if f.Min != nil {
			props = append(props, mcp.Min(float64(*f.Min)))
		}
		if f.Max != nil {
			props = append(props, mcp.Max(float64(*f.Max)))
		}
		return mcp.WithNumber(f.Name, props...)

	case validate.TypeEnum:
		props = append(props, mcp.Enum(f.Enum...))
		return mcp.WithString(f.Name, props...)

	case validate.TypeStringList:
		props = append(props, mcp.Items(map[string]any{"type": "string"}))
		return mcp.WithArray(f.Name, props...)

	default:
		// TypeString, TypeTimestamp and TypeResource are all JSON strings;
		// format constraints are enforced by the validation layer.
		if def, ok := f.Default.(string); ok {
			props = append(props, mcp.DefaultString(def))
		}
		return mcp.WithString(f.Name, props...)
	}
}
