package compliance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

type PersonnelItem struct {
	ID                  int    `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	EmploymentStatus    string `json:"employment_status"`
	DevicesCount        int    `json:"devices_count"`
	DevicesFailingCount int    `json:"devices_failing_count"`
	StartDate           string `json:"start_date,omitempty"`
}

func personnelItem(p drata.Personnel) PersonnelItem {
	return PersonnelItem{
		ID:                  p.ID,
		Email:               p.User.EmailAddress(),
		Name:                p.User.FullName(),
		EmploymentStatus:    p.EmploymentStatus,
		DevicesCount:        p.DevicesCount,
		DevicesFailingCount: p.DevicesFailingComplianceCount,
		StartDate:           p.StartDate,
	}
}

type PersonnelCounts struct {
	CurrentEmployeesContractors int `json:"current_employees_contractors"`
	WithFailingDevices          int `json:"with_failing_devices"`
}

type PersonnelReport struct {
	Total int `json:"total"`
	ListMeta
	Summary   PersonnelCounts `json:"summary"`
	Personnel []PersonnelItem `json:"personnel"`
}

// ListPersonnel lists personnel, optionally filtered upstream by employment
// status. The failing-devices count includes former staff, as upstream does.
func (s *Service) ListPersonnel(ctx context.Context, employmentStatus string) (PersonnelReport, error) {
	page, err := s.api.ListAllPersonnel(ctx, drata.PersonnelQuery{EmploymentStatus: employmentStatus})
	if err != nil {
		return PersonnelReport{}, err
	}
	var counts PersonnelCounts
	items := make([]PersonnelItem, 0, len(page.Items))
	for _, p := range page.Items {
		if isCurrent(p) {
			counts.CurrentEmployeesContractors++
		}
		if p.DevicesFailingComplianceCount > 0 {
			counts.WithFailingDevices++
		}
		items = append(items, personnelItem(p))
	}
	shown, meta := capList(s, items, page.Truncated)
	return PersonnelReport{Total: page.Total, ListMeta: meta, Summary: counts, Personnel: shown}, nil
}

type PersonnelIssuesReport struct {
	TotalWithIssues int    `json:"total_with_issues"`
	Message         string `json:"message"`
	ListMeta
	Personnel []PersonnelItem `json:"personnel"`
}

// PersonnelWithIssues keeps current employees and contractors with at least
// one device failing compliance.
func (s *Service) PersonnelWithIssues(ctx context.Context) (PersonnelIssuesReport, error) {
	page, err := s.api.ListAllPersonnel(ctx, drata.PersonnelQuery{})
	if err != nil {
		return PersonnelIssuesReport{}, err
	}
	var items []PersonnelItem
	for _, p := range page.Items {
		if hasDeviceIssues(p) {
			item := personnelItem(p)
			item.StartDate = ""
			items = append(items, item)
		}
	}
	message := "All devices compliant"
	if len(items) > 0 {
		message = fmt.Sprintf("%d personnel with device issues", len(items))
	}
	shown, meta := capList(s, items, page.Truncated)
	return PersonnelIssuesReport{TotalWithIssues: len(items), Message: message, ListMeta: meta, Personnel: shown}, nil
}

type PersonnelDetails struct {
	ID                  int             `json:"id"`
	Email               string          `json:"email"`
	Name                string          `json:"name"`
	EmploymentStatus    string          `json:"employment_status"`
	StartDate           string          `json:"start_date,omitempty"`
	SeparationDate      string          `json:"separation_date,omitempty"`
	DevicesCount        int             `json:"devices_count"`
	DevicesFailingCount int             `json:"devices_failing_count"`
	ComplianceChecks    json.RawMessage `json:"compliance_checks"`
	ComplianceTests     json.RawMessage `json:"compliance_tests"`
	Devices             json.RawMessage `json:"devices"`
}

// PersonnelLookup identifies a person by id or by email; the id wins when both
// are set.
type PersonnelLookup struct {
	ID    int
	Email string
}

func (s *Service) PersonnelDetails(ctx context.Context, lookup PersonnelLookup) (PersonnelDetails, error) {
	var (
		p   drata.Personnel
		err error
	)
	if lookup.ID > 0 {
		p, err = s.api.GetPersonnel(ctx, lookup.ID)
	} else {
		p, err = s.api.FindPersonnelByEmail(ctx, lookup.Email)
	}
	if err != nil {
		return PersonnelDetails{}, err
	}
	return PersonnelDetails{
		ID:                  p.ID,
		Email:               p.User.EmailAddress(),
		Name:                p.User.FullName(),
		EmploymentStatus:    p.EmploymentStatus,
		StartDate:           p.StartDate,
		SeparationDate:      p.SeparationDate,
		DevicesCount:        p.DevicesCount,
		DevicesFailingCount: p.DevicesFailingComplianceCount,
		ComplianceChecks:    rawOr(p.ComplianceChecks, "{}"),
		ComplianceTests:     rawOr(p.ComplianceTests, "[]"),
		Devices:             rawOr(p.Devices, "[]"),
	}, nil
}

func rawOr(raw json.RawMessage, fallback string) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(fallback)
	}
	return raw
}
