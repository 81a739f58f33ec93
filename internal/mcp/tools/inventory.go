package tools

import (
	"context"

	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
)

func policyTools(svc *compliance.Service) []dispatch.Tool {
	return []dispatch.Tool{
		{
			Name:        "list_policies",
			Title:       "List policies",
			Description: "List company policies with version and publication info.",
			Params:      []dispatch.Param{limitParam("Max results (1-50, default 50)")},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListPolicies(ctx, args.IntOr("limit", defaultLimit))
			},
		},
		{
			Name:        "list_pending_policy_acknowledgments",
			Title:       "List pending policy acknowledgments",
			Description: "List policy assignments that users have not acknowledged yet.",
			Params:      []dispatch.Param{limitParam("Max results (1-50, default 50)")},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.PendingPolicyAcknowledgments(ctx, args.IntOr("limit", defaultLimit))
			},
		},
	}
}

func inventoryTools(svc *compliance.Service) []dispatch.Tool {
	return []dispatch.Tool{
		{
			Name:        "list_connections",
			Title:       "List connections",
			Description: "List integrations and their sync state, with active and failed counts.",
			Params:      []dispatch.Param{limitParam("Max results (1-50, default 50)")},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListConnections(ctx, args.IntOr("limit", defaultLimit))
			},
		},
		{
			Name:        "list_vendors",
			Title:       "List vendors",
			Description: "List third-party vendors with status and risk level.",
			Params:      []dispatch.Param{limitParam("Max results (1-50, default 50)")},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListVendors(ctx, args.IntOr("limit", defaultLimit))
			},
		},
		{
			Name:        "get_vendor_details",
			Title:       "Get vendor details",
			Description: "Get one vendor by id.",
			Params:      []dispatch.Param{idParam("vendor_id", "The vendor id")},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				id, _ := args.Int("vendor_id")
				return svc.VendorDetails(ctx, id)
			},
		},
		{
			Name:        "list_devices",
			Title:       "List devices",
			Description: "List registered devices and their owners.",
			Params:      []dispatch.Param{limitParam("Max results (1-50, default 50)")},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListDevices(ctx, args.IntOr("limit", defaultLimit))
			},
		},
		{
			Name:        "list_events",
			Title:       "List events",
			Description: "List audit log events, oldest first as served by Drata.",
			Params: []dispatch.Param{
				limitParam("Number of events to fetch (1-50, default 50)"),
				{Name: "category", Description: "Filter by event category", Type: dispatch.TypeString, Enum: compliance.EventCategories},
				{Name: "event_type", Description: "Filter by event type, passed to Drata as is", Type: dispatch.TypeString},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListEvents(ctx, compliance.EventsRequest{
					Limit:     args.IntOr("limit", compliance.MaxEventLimit),
					Category:  args.String("category"),
					EventType: args.String("event_type"),
				})
			},
		},
		{
			Name:        "list_assets",
			Title:       "List assets",
			Description: "List the asset inventory.",
			Params: []dispatch.Param{
				{Name: "asset_type", Description: "Filter by asset type", Type: dispatch.TypeString, Enum: compliance.AssetTypes},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListAssets(ctx, args.String("asset_type"))
			},
		},
		{
			Name:        "list_users",
			Title:       "List users",
			Description: "List Drata users in the organization with their roles.",
			Handler: func(ctx context.Context, _ dispatch.Args) (any, error) {
				return svc.ListUsers(ctx)
			},
		},
	}
}

func summaryTool(svc *compliance.Service) dispatch.Tool {
	return dispatch.Tool{
		Name:  "get_compliance_summary",
		Title: "Get compliance summary",
		Description: "Dashboard across controls, monitors, personnel and connections with an overall status " +
			"(COMPLIANT or NEEDS_ATTENTION) and a prioritized recommendation.",
		Handler: func(ctx context.Context, _ dispatch.Args) (any, error) {
			return svc.ComplianceSummary(ctx)
		},
	}
}
