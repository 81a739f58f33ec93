package compliance

import (
	"context"
	"fmt"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

type PolicyItem struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	Status        string `json:"status"`
	LastUpdatedAt string `json:"last_updated_at,omitempty"`
	PublishedAt   string `json:"published_at,omitempty"`
}

type PoliciesReport struct {
	Total int `json:"total"`
	ListMeta
	Policies []PolicyItem `json:"policies"`
}

// ListPolicies fetches one page of up to limit policies.
func (s *Service) ListPolicies(ctx context.Context, limit int) (PoliciesReport, error) {
	page, err := s.api.ListPolicies(ctx, drata.ListOptions{Limit: limit})
	if err != nil {
		return PoliciesReport{}, err
	}
	items := make([]PolicyItem, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, PolicyItem{
			ID:            p.ID,
			Name:          p.Name,
			Version:       p.Version.String(),
			Status:        p.Status,
			LastUpdatedAt: p.UpdatedAt,
			PublishedAt:   p.PublishedAt,
		})
	}
	shown, meta := capList(s, items, false)
	return PoliciesReport{Total: page.Total, ListMeta: meta, Policies: shown}, nil
}

type PendingAcknowledgment struct {
	ID            int    `json:"id"`
	PolicyName    string `json:"policy_name"`
	PolicyVersion string `json:"policy_version"`
	UserEmail     string `json:"user_email"`
	UserName      string `json:"user_name"`
	AssignedAt    string `json:"assigned_at,omitempty"`
}

type PendingAcknowledgmentsReport struct {
	TotalPending int    `json:"total_pending"`
	Message      string `json:"message"`
	ListMeta
	Pending []PendingAcknowledgment `json:"pending"`
}

// PendingPolicyAcknowledgments lists policy assignments not yet acknowledged.
func (s *Service) PendingPolicyAcknowledgments(ctx context.Context, limit int) (PendingAcknowledgmentsReport, error) {
	unacked := false
	page, err := s.api.ListUserPolicies(ctx, drata.UserPolicyQuery{
		ListOptions:  drata.ListOptions{Limit: limit},
		Acknowledged: &unacked,
	})
	if err != nil {
		return PendingAcknowledgmentsReport{}, err
	}
	items := make([]PendingAcknowledgment, 0, len(page.Items))
	for _, a := range page.Items {
		item := PendingAcknowledgment{
			ID:         a.ID,
			UserEmail:  a.User.EmailAddress(),
			UserName:   a.User.FullName(),
			AssignedAt: a.CreatedAt,
		}
		if a.Policy != nil {
			item.PolicyName = a.Policy.Name
			item.PolicyVersion = a.Policy.Version.String()
		}
		items = append(items, item)
	}
	message := "All policies acknowledged"
	if len(items) > 0 {
		message = fmt.Sprintf("%d policy acknowledgments pending", len(items))
	}
	shown, meta := capList(s, items, false)
	return PendingAcknowledgmentsReport{
		TotalPending: page.Total,
		Message:      message,
		ListMeta:     meta,
		Pending:      shown,
	}, nil
}
