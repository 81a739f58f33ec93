package compliance

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

const (
	OverallCompliant      = "COMPLIANT"
	OverallNeedsAttention = "NEEDS_ATTENTION"

	areaOK       = "OK"
	areaWarning  = "WARNING"
	areaCritical = "CRITICAL"
)

type ControlsArea struct {
	Total     int                   `json:"total"`
	Breakdown map[ControlStatus]int `json:"breakdown"`
}

type MonitorsArea struct {
	Total  int    `json:"total"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
	Status string `json:"status"`
}

type PersonnelArea struct {
	Total            int    `json:"total"`
	WithDeviceIssues int    `json:"with_device_issues"`
	Status           string `json:"status"`
}

type ConnectionsArea struct {
	Total  int    `json:"total"`
	Active int    `json:"active"`
	Failed int    `json:"failed"`
	Status string `json:"status"`
}

type SummaryAreas struct {
	Controls    ControlsArea    `json:"controls"`
	Monitors    MonitorsArea    `json:"monitors"`
	Personnel   PersonnelArea   `json:"personnel"`
	Connections ConnectionsArea `json:"connections"`
}

type Summary struct {
	Status         string       `json:"status"`
	TotalIssues    int          `json:"total_issues"`
	Summary        SummaryAreas `json:"summary"`
	Recommendation string       `json:"recommendation"`
	Truncated      bool         `json:"truncated,omitempty"`
}

// ComplianceSummary fetches controls, monitors, personnel and connections in
// parallel. Total issues count failing monitors, current personnel with
// failing devices and failed connections; control readiness is reported as a
// breakdown only.
func (s *Service) ComplianceSummary(ctx context.Context) (Summary, error) {
	var (
		controls    drata.Page[drata.Control]
		monitors    drata.Page[drata.Monitor]
		personnel   drata.Page[drata.Personnel]
		connections drata.Page[drata.Connection]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		controls, err = s.api.ListAllControls(gctx, drata.ControlQuery{})
		return err
	})
	g.Go(func() (err error) {
		monitors, err = s.api.ListAllMonitors(gctx, drata.MonitorQuery{})
		return err
	})
	g.Go(func() (err error) {
		personnel, err = s.api.ListAllPersonnel(gctx, drata.PersonnelQuery{})
		return err
	})
	g.Go(func() (err error) {
		connections, err = s.api.ListConnections(gctx, drata.ListOptions{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("compliance summary: %w", err)
	}

	breakdown := make(map[ControlStatus]int, len(ControlStatuses))
	for _, c := range controls.Items {
		breakdown[DeriveStatus(c)]++
	}

	mc := countMonitors(monitors.Items)

	var current, withIssues int
	for _, p := range personnel.Items {
		if isCurrent(p) {
			current++
		}
		if hasDeviceIssues(p) {
			withIssues++
		}
	}

	cc := countConnections(connections.Items)

	total := mc.Failed + withIssues + cc.WithFailures
	status := OverallCompliant
	if total > 0 {
		status = OverallNeedsAttention
	}

	out := Summary{
		Status:      status,
		TotalIssues: total,
		Summary: SummaryAreas{
			Controls: ControlsArea{Total: controls.Total, Breakdown: breakdown},
			Monitors: MonitorsArea{
				Total:  len(monitors.Items),
				Passed: mc.Passed,
				Failed: mc.Failed,
				Status: areaStatus(mc.Failed, areaCritical),
			},
			Personnel: PersonnelArea{
				Total:            current,
				WithDeviceIssues: withIssues,
				Status:           areaStatus(withIssues, areaWarning),
			},
			Connections: ConnectionsArea{
				Total:  len(connections.Items),
				Active: cc.Active,
				Failed: cc.WithFailures,
				Status: areaStatus(cc.WithFailures, areaCritical),
			},
		},
		Recommendation: recommendation(mc.Failed, withIssues, cc.WithFailures),
		Truncated:      controls.Truncated || monitors.Truncated || personnel.Truncated,
	}
	s.log.Debug("compliance summary built", "status", out.Status, "total_issues", out.TotalIssues)
	return out, nil
}

func areaStatus(issues int, severity string) string {
	if issues > 0 {
		return severity
	}
	return areaOK
}

// recommendation picks the most urgent area: monitors, then connections, then
// personnel.
func recommendation(failedMonitors, personnelIssues, failedConnections int) string {
	switch {
	case failedMonitors > 0:
		return fmt.Sprintf("Priority: Investigate %d failing monitors - automated evidence collection may be broken", failedMonitors)
	case failedConnections > 0:
		return fmt.Sprintf("Priority: Fix %d failed connections - integrations are not syncing", failedConnections)
	case personnelIssues > 0:
		return fmt.Sprintf("Action needed: %d personnel have device compliance issues", personnelIssues)
	}
	return "All systems compliant - ready for audit"
}
