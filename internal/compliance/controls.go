package compliance

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

// ControlsRequest filters list_controls. Status, when set, keeps only controls
// with that derived status; OnlyIssues keeps only issue statuses.
type ControlsRequest struct {
	Search      string
	FrameworkID int
	Status      ControlStatus
	OnlyIssues  bool
}

type ControlItem struct {
	ID          int           `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Status      ControlStatus `json:"status"`
	IsMonitored bool          `json:"is_monitored"`
	HasEvidence bool          `json:"has_evidence"`
	HasOwner    bool          `json:"has_owner"`
	Frameworks  []string      `json:"frameworks"`
}

type ControlIssueCounts struct {
	NotReady      int `json:"not_ready"`
	NoOwner       int `json:"no_owner"`
	NeedsEvidence int `json:"needs_evidence"`
}

func (c *ControlIssueCounts) add(s ControlStatus) {
	switch s {
	case StatusNotReady:
		c.NotReady++
	case StatusNoOwner:
		c.NoOwner++
	case StatusNeedsEvidence:
		c.NeedsEvidence++
	}
}

type ControlsReport struct {
	Total int `json:"total"`
	ListMeta
	Summary  ControlIssueCounts `json:"summary"`
	Controls []ControlItem      `json:"controls"`
}

func controlItem(c drata.Control) ControlItem {
	frameworks := c.FrameworkTags
	if frameworks == nil {
		frameworks = []string{}
	}
	return ControlItem{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Status:      DeriveStatus(c),
		IsMonitored: c.IsMonitored,
		HasEvidence: c.HasEvidence,
		HasOwner:    c.HasOwner,
		Frameworks:  frameworks,
	}
}

// ListControls walks every control matching the search and derives statuses.
// Summary counts cover all matching controls, not only the ones shown.
func (s *Service) ListControls(ctx context.Context, req ControlsRequest) (ControlsReport, error) {
	page, err := s.api.ListAllControls(ctx, drata.ControlQuery{Search: req.Search, FrameworkID: req.FrameworkID})
	if err != nil {
		return ControlsReport{}, err
	}

	var (
		items   []ControlItem
		summary ControlIssueCounts
	)
	for _, c := range page.Items {
		item := controlItem(c)
		if req.OnlyIssues && !item.Status.IsIssue() {
			continue
		}
		if req.Status != "" && item.Status != req.Status {
			continue
		}
		summary.add(item.Status)
		items = append(items, item)
	}

	shown, meta := capList(s, items, page.Truncated)
	s.log.Debug("controls listed", "total", page.Total, "matching", len(items), "showing", meta.Showing)
	return ControlsReport{
		Total:    page.Total,
		ListMeta: meta,
		Summary:  summary,
		Controls: shown,
	}, nil
}

// ControlsWithIssues lists controls that are not ready, have no owner or
// need evidence.
func (s *Service) ControlsWithIssues(ctx context.Context) (ControlsReport, error) {
	return s.ListControls(ctx, ControlsRequest{OnlyIssues: true})
}

type LinkedMonitor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	LastCheck string `json:"last_check,omitempty"`
}

func linkedMonitor(m drata.Monitor) LinkedMonitor {
	return LinkedMonitor{ID: m.ID, Name: m.Name, Status: m.CheckResultStatus, Priority: m.Priority, LastCheck: m.LastCheck}
}

type ControlDetails struct {
	ID             int             `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Status         ControlStatus   `json:"status"`
	Description    string          `json:"description"`
	IsReady        bool            `json:"is_ready"`
	IsMonitored    bool            `json:"is_monitored"`
	HasEvidence    bool            `json:"has_evidence"`
	HasOwner       bool            `json:"has_owner"`
	Frameworks     []string        `json:"frameworks"`
	LinkedMonitors []LinkedMonitor `json:"linked_monitors"`
}

// ControlLookup identifies a control by code (e.g. DCF-71) or numeric id.
// The code wins when both are set.
type ControlLookup struct {
	Code string
	ID   int
}

// ControlDetails fetches the control and every monitor in parallel, then joins
// the monitors linked to the control. A code absent upstream yields an error
// wrapping drata.ErrNotFound.
func (s *Service) ControlDetails(ctx context.Context, lookup ControlLookup) (ControlDetails, error) {
	var (
		control  drata.Control
		monitors drata.Page[drata.Monitor]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		control, err = s.findControl(gctx, lookup)
		return err
	})
	g.Go(func() error {
		var err error
		monitors, err = s.api.ListAllMonitors(gctx, drata.MonitorQuery{})
		return err
	})
	if err := g.Wait(); err != nil {
		return ControlDetails{}, err
	}

	linked := []LinkedMonitor{}
	for _, m := range monitors.Items {
		if m.CoversControl(control.Code) {
			linked = append(linked, linkedMonitor(m))
		}
	}
	item := controlItem(control)
	return ControlDetails{
		ID:             control.ID,
		Code:           control.Code,
		Name:           control.Name,
		Status:         item.Status,
		Description:    control.Description,
		IsReady:        control.IsReady,
		IsMonitored:    control.IsMonitored,
		HasEvidence:    control.HasEvidence,
		HasOwner:       control.HasOwner,
		Frameworks:     item.Frameworks,
		LinkedMonitors: linked,
	}, nil
}

// findControl searches by code and keeps only an exact code match. The
// upstream search also matches longer codes, names and descriptions, so every
// page of results is walked.
func (s *Service) findControl(ctx context.Context, lookup ControlLookup) (drata.Control, error) {
	if lookup.Code == "" {
		return s.api.GetControl(ctx, lookup.ID)
	}
	page, err := s.api.ListAllControls(ctx, drata.ControlQuery{Search: lookup.Code})
	if err != nil {
		return drata.Control{}, err
	}
	for _, c := range page.Items {
		if c.Code == lookup.Code {
			return c, nil
		}
	}
	return drata.Control{}, fmt.Errorf("control %s: %w", lookup.Code, drata.ErrNotFound)
}

type MonitorsForControlReport struct {
	ControlCode   string          `json:"control_code"`
	TotalMonitors int             `json:"total_monitors"`
	Monitors      []LinkedMonitor `json:"monitors"`
}

// MonitorsForControl lists the monitors linked to a control code. An unknown
// code yields an empty list, not an error.
func (s *Service) MonitorsForControl(ctx context.Context, code string) (MonitorsForControlReport, error) {
	page, err := s.api.ListAllMonitors(ctx, drata.MonitorQuery{})
	if err != nil {
		return MonitorsForControlReport{}, err
	}
	linked := []LinkedMonitor{}
	for _, m := range page.Items {
		if m.CoversControl(code) {
			linked = append(linked, linkedMonitor(m))
		}
	}
	return MonitorsForControlReport{ControlCode: code, TotalMonitors: len(linked), Monitors: linked}, nil
}
