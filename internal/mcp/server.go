package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
)

const (
	serverName    = "drata-compliance"
	serverVersion = "1.0.0"
)

const instructions = `You are a SOC2 Type II compliance assistant connected to Drata.

Tool selection:
- bad, failing or problematic controls: list_controls_with_issues
- failing tests: list_failing_monitors
- tests of a control: get_monitors_for_control
- dashboard overview: get_compliance_summary

Controls have derived statuses: PASSING, READY, NEEDS_EVIDENCE, NOT_READY, NO_OWNER, ARCHIVED.
Monitors (tests) have statuses: PASSED, FAILED, NOT_TESTED.

Always prioritize FAILED or non-compliant items first.`

// Dispatcher runs a named tool with raw arguments.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args map[string]any) (any, error)
	Registry() *dispatch.Registry
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler

	dispatcher Dispatcher
	log        logging.Logger
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	s := &Server{
		MCP:        mcpServer,
		dispatcher: cfg.Dispatcher,
		log:        cfg.Logger.WithName("mcp"),
	}

	for _, t := range cfg.Dispatcher.Registry().Tools() {
		mcpServer.AddTool(toolSchema(t), s.toolHandler(t.Name))
	}
	s.addResources()
	s.addPrompts()

	s.HTTP = server.NewStreamableHTTPServer(mcpServer, cfg.Options...)
	s.Handler = s.HTTP
	if cfg.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.EndpointPath, s.HTTP)
		mux.Handle("/metrics", cfg.Metrics)
		s.Handler = mux
	}
	return s
}

// toolSchema declares the tool's input schema from its registered parameters.
func toolSchema(t dispatch.Tool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.Description),
		mcp.WithTitleAnnotation(t.Title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	for _, p := range t.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case dispatch.TypeNumber:
			if p.Min != 0 {
				props = append(props, mcp.Min(float64(p.Min)))
			}
			if p.Max != 0 {
				props = append(props, mcp.Max(float64(p.Max)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case dispatch.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(t.Name, opts...)
}

// toolHandler returns results as structured content with a JSON text
// rendering. Failures are tool results flagged as errors, never protocol
// errors, so the assistant sees the error code.
func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.dispatcher.Dispatch(ctx, name, req.GetArguments())
		if err != nil {
			return errorResult(name, err), nil
		}
		text, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errorResult(name, err), nil
		}
		return mcp.NewToolResultStructured(result, string(text)), nil
	}
}

func errorResult(tool string, err error) *mcp.CallToolResult {
	var de *dispatch.Error
	if !errors.As(err, &de) {
		de = dispatch.Classify(tool, err)
	}
	body, mErr := json.Marshal(de)
	if mErr != nil {
		return mcp.NewToolResultError(de.Error())
	}
	return mcp.NewToolResultError(string(body))
}
