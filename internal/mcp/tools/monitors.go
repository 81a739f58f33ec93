package tools

import (
	"context"

	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
)

func monitorTools(svc *compliance.Service) []dispatch.Tool {
	return []dispatch.Tool{
		{
			Name:        "list_monitors",
			Title:       "List monitors",
			Description: "List automated compliance tests (monitors) with a PASSED/FAILED/NOT_TESTED summary.",
			Params: []dispatch.Param{
				{Name: "status", Description: "Filter by check result", Type: dispatch.TypeString, Enum: compliance.MonitorStatuses},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListMonitors(ctx, args.String("status"))
			},
		},
		{
			Name:        "list_failing_monitors",
			Title:       "List failing monitors",
			Description: "List failing automated tests with the controls they affect. Use for failing tests that need remediation.",
			Handler: func(ctx context.Context, _ dispatch.Args) (any, error) {
				return svc.FailingMonitors(ctx)
			},
		},
		{
			Name:        "get_monitor_details",
			Title:       "Get monitor details",
			Description: "Get a monitor with its failure reason, remediation steps and evidence collection notes.",
			Params:      []dispatch.Param{idParam("monitor_id", "The monitor id")},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				id, _ := args.Int("monitor_id")
				return svc.MonitorDetails(ctx, id)
			},
		},
	}
}
