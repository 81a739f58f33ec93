package tools

import (
	"context"
	"fmt"

	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
)

func personnelTools(svc *compliance.Service) []dispatch.Tool {
	return []dispatch.Tool{
		{
			Name:        "list_personnel",
			Title:       "List personnel",
			Description: "List employees and contractors with device compliance counts.",
			Params: []dispatch.Param{
				{Name: "employment_status", Description: "Filter by employment status", Type: dispatch.TypeString, Enum: compliance.EmploymentStatuses},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				return svc.ListPersonnel(ctx, args.String("employment_status"))
			},
		},
		{
			Name:        "list_personnel_with_issues",
			Title:       "List personnel with issues",
			Description: "List current employees and contractors with at least one device failing compliance.",
			Handler: func(ctx context.Context, _ dispatch.Args) (any, error) {
				return svc.PersonnelWithIssues(ctx)
			},
		},
		{
			Name:        "get_personnel_details",
			Title:       "Get personnel details",
			Description: "Get one person's compliance checks, tests and devices, by personnel id or email.",
			Params: []dispatch.Param{
				{Name: "personnel_id", Description: "Personnel id", Type: dispatch.TypeNumber, Min: 1},
				{Name: "email", Description: "Email address, used when no id is given", Type: dispatch.TypeString},
			},
			Handler: func(ctx context.Context, args dispatch.Args) (any, error) {
				id, hasID := args.Int("personnel_id")
				email := args.String("email")
				if !hasID && email == "" {
					return nil, fmt.Errorf("personnel_id or email is required: %w", dispatch.ErrInvalidArgument)
				}
				return svc.PersonnelDetails(ctx, compliance.PersonnelLookup{ID: id, Email: email})
			},
		},
	}
}
