// Package compliance turns Drata records into the reports served by the tools:
// derived control status, client-side filters, grouped counts and joins.
package compliance

import (
	"context"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
	"github.com/roivaz/drata-compliance-mcp/internal/report"
)

// API is the subset of the Drata client the reports are built from.
type API interface {
	ListAllControls(ctx context.Context, q drata.ControlQuery) (drata.Page[drata.Control], error)
	GetControl(ctx context.Context, id int) (drata.Control, error)
	ListAllMonitors(ctx context.Context, q drata.MonitorQuery) (drata.Page[drata.Monitor], error)
	GetMonitor(ctx context.Context, id int) (drata.Monitor, error)
	ListAllPersonnel(ctx context.Context, q drata.PersonnelQuery) (drata.Page[drata.Personnel], error)
	GetPersonnel(ctx context.Context, id int) (drata.Personnel, error)
	FindPersonnelByEmail(ctx context.Context, email string) (drata.Personnel, error)
	ListPolicies(ctx context.Context, opts drata.ListOptions) (drata.Page[drata.Policy], error)
	ListUserPolicies(ctx context.Context, q drata.UserPolicyQuery) (drata.Page[drata.UserPolicy], error)
	ListConnections(ctx context.Context, opts drata.ListOptions) (drata.Page[drata.Connection], error)
	ListVendors(ctx context.Context, opts drata.ListOptions) (drata.Page[drata.Vendor], error)
	GetVendor(ctx context.Context, id int) (drata.Vendor, error)
	ListDevices(ctx context.Context, opts drata.ListOptions) (drata.Page[drata.Device], error)
	ListAssets(ctx context.Context, opts drata.ListOptions) (drata.Page[drata.Asset], error)
	ListEvents(ctx context.Context, q drata.EventQuery) (drata.Page[drata.Event], error)
	ListUsers(ctx context.Context, opts drata.ListOptions) (drata.Page[drata.User], error)
}

// Service builds reports. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	api    API
	limits report.Limits
	log    logging.Logger
}

func NewService(api API, limits report.Limits, log logging.Logger) *Service {
	return &Service{api: api, limits: limits, log: log.WithName("compliance")}
}

// ListMeta is embedded in every itemized report.
type ListMeta struct {
	Showing   int  `json:"showing"`
	Truncated bool `json:"truncated,omitempty"`
}

func capList[T any](s *Service, items []T, upstreamTruncated bool) ([]T, ListMeta) {
	kept, truncated := report.Cap(items, s.limits)
	if kept == nil {
		kept = []T{}
	}
	return kept, ListMeta{Showing: len(kept), Truncated: truncated || upstreamTruncated}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
