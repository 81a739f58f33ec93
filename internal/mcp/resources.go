package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
)

const summaryURI = "drata://compliance/summary"

func (s *Server) addResources() {
	summary := mcp.NewResource(summaryURI, "Compliance summary",
		mcp.WithResourceDescription("Current compliance status across monitors, personnel and connections."),
		mcp.WithMIMEType("text/markdown"),
	)
	s.MCP.AddResource(summary, s.readSummary)
}

// readSummary goes through the dispatcher so the read is logged and measured
// like a get_compliance_summary call.
func (s *Server) readSummary(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	result, err := s.dispatcher.Dispatch(ctx, "get_compliance_summary", nil)
	if err != nil {
		return nil, err
	}
	summary, ok := result.(compliance.Summary)
	if !ok {
		return nil, fmt.Errorf("unexpected summary type %T", result)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      summaryURI,
			MIMEType: "text/markdown",
			Text:     summary.Markdown(),
		},
	}, nil
}
