package tools

import (
	"context"
	"fmt"

	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
)

func controlTools(svc *compliance.Service) []dispatch.Tool {
	return []dispatch.Tool{
		{
			Name:  "list_controls",
			Title: "List controls",
			Description: "List SOC2 controls with their derived readiness status (PASSING, READY, NEEDS_EVIDENCE, NOT_READY, NO_OWNER, ARCHIVED). " +
				"Summary counts cover every matching control.",
			Params: []dispatch.Param{
				{Name: "search", Description: "Search term for control name, code or description", Type: dispatch.TypeString},
				{Name: "framework_id", Description: "Only controls mapped to this Drata framework id", Type: dispatch.TypeNumber, Min: 1},
				{Name: "status", Description: "Keep only controls with this derived status", Type: dispatch.TypeString, Enum: controlStatusNames()},
				{Name: "only_issues", Description: "Only controls that are not ready, have no owner or need evidence", Type: dispatch.TypeBoolean},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListControls(ctx, compliance.ControlsRequest{
					Search:      args.String("search"),
					FrameworkID: args.IntOr("framework_id", 0),
					Status:      compliance.ControlStatus(args.String("status")),
					OnlyIssues:  args.Bool("only_issues"),
				})
			},
		},
		{
			Name:  "list_controls_with_issues",
			Title: "List controls with issues",
			Description: "List controls that need work: status NOT_READY, NO_OWNER or NEEDS_EVIDENCE. " +
				"Use for bad, failing or problematic controls.",
			Handler: func(ctx context.Context, _ dispatch.Args) (any, error) {
				return svc.ControlsWithIssues(ctx)
			},
		},
		{
			Name:        "get_control_details",
			Title:       "Get control details",
			Description: "Get a control by code (e.g. DCF-71) or numeric id, with its derived status and the monitors linked to it.",
			Params: []dispatch.Param{
				{Name: "control_code", Description: "Control code, e.g. DCF-71", Type: dispatch.TypeString},
				{Name: "control_id", Description: "Numeric control id, used when no code is given", Type: dispatch.TypeNumber, Min: 1},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				id, hasID := args.Int("control_id")
				code := args.String("control_code")
				if code == "" && !hasID {
					return nil, fmt.Errorf("control_code or control_id is required: %w", dispatch.ErrInvalidArgument)
				}
				return svc.ControlDetails(ctx, compliance.ControlLookup{Code: code, ID: id})
			},
		},
		{
			Name:        "get_monitors_for_control",
			Title:       "Get monitors for control",
			Description: "List the automated tests (monitors) linked to a control code.",
			Params: []dispatch.Param{
				{Name: "control_code", Description: "Control code, e.g. DCF-71", Type: dispatch.TypeString, Required: true},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.MonitorsForControl(ctx, args.String("control_code"))
			},
		},
	}
}
