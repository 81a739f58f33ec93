package compliance

import (
	"context"
	"fmt"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

const descriptionPreviewRunes = 200

type MonitorCounts struct {
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	NotTested int `json:"not_tested"`
}

func countMonitors(monitors []drata.Monitor) MonitorCounts {
	var c MonitorCounts
	for _, m := range monitors {
		switch m.CheckResultStatus {
		case MonitorPassed:
			c.Passed++
		case MonitorFailed:
			c.Failed++
		case MonitorNotTested:
			c.NotTested++
		}
	}
	return c
}

type MonitorItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	LastCheck   string `json:"last_check,omitempty"`
	CheckStatus string `json:"check_status,omitempty"`
}

type MonitorsReport struct {
	Total int `json:"total"`
	ListMeta
	Summary  MonitorCounts `json:"summary"`
	Monitors []MonitorItem `json:"monitors"`
}

// ListMonitors lists monitors, optionally filtered upstream by check result.
func (s *Service) ListMonitors(ctx context.Context, status string) (MonitorsReport, error) {
	page, err := s.api.ListAllMonitors(ctx, drata.MonitorQuery{CheckResultStatus: status})
	if err != nil {
		return MonitorsReport{}, err
	}
	items := make([]MonitorItem, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, MonitorItem{
			ID:          m.ID,
			Name:        m.Name,
			Status:      m.CheckResultStatus,
			Priority:    m.Priority,
			LastCheck:   m.LastCheck,
			CheckStatus: m.CheckStatus,
		})
	}
	shown, meta := capList(s, items, page.Truncated)
	return MonitorsReport{
		Total:    page.Total,
		ListMeta: meta,
		Summary:  countMonitors(page.Items),
		Monitors: shown,
	}, nil
}

type FailingMonitor struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Priority    string   `json:"priority"`
	LastCheck   string   `json:"last_check,omitempty"`
	Description string   `json:"description"`
	Controls    []string `json:"controls"`
}

type FailingMonitorsReport struct {
	TotalFailed int    `json:"total_failed"`
	Message     string `json:"message"`
	ListMeta
	FailingMonitors []FailingMonitor `json:"failing_monitors"`
}

// FailingMonitors walks all monitors and keeps the FAILED ones. The filter
// runs client-side so the result is a subset of ListMonitors.
func (s *Service) FailingMonitors(ctx context.Context) (FailingMonitorsReport, error) {
	page, err := s.api.ListAllMonitors(ctx, drata.MonitorQuery{})
	if err != nil {
		return FailingMonitorsReport{}, err
	}
	var failing []FailingMonitor
	for _, m := range page.Items {
		if m.CheckResultStatus != MonitorFailed {
			continue
		}
		failing = append(failing, FailingMonitor{
			ID:          m.ID,
			Name:        m.Name,
			Priority:    m.Priority,
			LastCheck:   m.LastCheck,
			Description: truncateRunes(m.Description, descriptionPreviewRunes),
			Controls:    m.ControlCodes(),
		})
	}
	message := "All tests passing"
	if len(failing) > 0 {
		message = fmt.Sprintf("%d tests failing", len(failing))
	}
	shown, meta := capList(s, failing, page.Truncated)
	return FailingMonitorsReport{
		TotalFailed:     len(failing),
		Message:         message,
		ListMeta:        meta,
		FailingMonitors: shown,
	}, nil
}

type MonitorDetails struct {
	ID                            int                `json:"id"`
	Name                          string             `json:"name"`
	Description                   string             `json:"description"`
	Status                        string             `json:"status"`
	Priority                      string             `json:"priority"`
	CheckStatus                   string             `json:"check_status"`
	LastCheck                     string             `json:"last_check,omitempty"`
	Controls                      []drata.ControlRef `json:"controls"`
	FailedTestDescription         string             `json:"failed_test_description,omitempty"`
	RemedyDescription             string             `json:"remedy_description,omitempty"`
	EvidenceCollectionDescription string             `json:"evidence_collection_description,omitempty"`
}

// MonitorDetails returns a monitor with the failure and remedy text of its
// first instance.
func (s *Service) MonitorDetails(ctx context.Context, id int) (MonitorDetails, error) {
	m, err := s.api.GetMonitor(ctx, id)
	if err != nil {
		return MonitorDetails{}, err
	}
	var first drata.MonitorInstance
	if len(m.MonitorInstances) > 0 {
		first = m.MonitorInstances[0]
	}
	controls := m.Controls
	if controls == nil {
		controls = []drata.ControlRef{}
	}
	return MonitorDetails{
		ID:                            m.ID,
		Name:                          m.Name,
		Description:                   m.Description,
		Status:                        m.CheckResultStatus,
		Priority:                      m.Priority,
		CheckStatus:                   m.CheckStatus,
		LastCheck:                     m.LastCheck,
		Controls:                      controls,
		FailedTestDescription:         first.FailedTestDescription,
		RemedyDescription:             first.RemedyDescription,
		EvidenceCollectionDescription: first.EvidenceCollectionDescription,
	}, nil
}
