package compliance

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

// MaxEventLimit is the largest page the events endpoint serves.
const MaxEventLimit = 50

const connectionActive = "ACTIVE"

type ConnectionItem struct {
	ID            int      `json:"id"`
	Type          string   `json:"type"`
	State         string   `json:"state"`
	Connected     bool     `json:"connected"`
	ConnectedAt   string   `json:"connected_at,omitempty"`
	FailedAt      *string  `json:"failed_at"`
	ProviderTypes []string `json:"provider_types"`
}

type ConnectionCounts struct {
	Active       int `json:"active"`
	WithFailures int `json:"with_failures"`
}

func countConnections(conns []drata.Connection) ConnectionCounts {
	var c ConnectionCounts
	for _, conn := range conns {
		if conn.State == connectionActive {
			c.Active++
		}
		if conn.Failed() {
			c.WithFailures++
		}
	}
	return c
}

type ConnectionsReport struct {
	Total int `json:"total"`
	ListMeta
	Summary     ConnectionCounts `json:"summary"`
	Connections []ConnectionItem `json:"connections"`
}

func (s *Service) ListConnections(ctx context.Context, limit int) (ConnectionsReport, error) {
	page, err := s.api.ListConnections(ctx, drata.ListOptions{Limit: limit})
	if err != nil {
		return ConnectionsReport{}, err
	}
	items := make([]ConnectionItem, 0, len(page.Items))
	for _, c := range page.Items {
		providers := make([]string, 0, len(c.ProviderTypes))
		for _, pt := range c.ProviderTypes {
			providers = append(providers, pt.Value)
		}
		items = append(items, ConnectionItem{
			ID:            c.ID,
			Type:          c.ClientType,
			State:         c.State,
			Connected:     c.Connected,
			ConnectedAt:   c.ConnectedAt,
			FailedAt:      c.FailedAt,
			ProviderTypes: providers,
		})
	}
	shown, meta := capList(s, items, false)
	return ConnectionsReport{
		Total:       page.Total,
		ListMeta:    meta,
		Summary:     countConnections(page.Items),
		Connections: shown,
	}, nil
}

type VendorItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Website   string `json:"website,omitempty"`
	Status    string `json:"status"`
	RiskLevel string `json:"risk_level"`
	Category  string `json:"category,omitempty"`
}

func vendorItem(v drata.Vendor) VendorItem {
	return VendorItem{ID: v.ID, Name: v.Name, Website: v.Website, Status: v.Status, RiskLevel: v.RiskLevel, Category: v.Category}
}

type VendorsReport struct {
	Total int `json:"total"`
	ListMeta
	Vendors []VendorItem `json:"vendors"`
}

func (s *Service) ListVendors(ctx context.Context, limit int) (VendorsReport, error) {
	page, err := s.api.ListVendors(ctx, drata.ListOptions{Limit: limit})
	if err != nil {
		return VendorsReport{}, err
	}
	items := make([]VendorItem, 0, len(page.Items))
	for _, v := range page.Items {
		items = append(items, vendorItem(v))
	}
	shown, meta := capList(s, items, false)
	return VendorsReport{Total: page.Total, ListMeta: meta, Vendors: shown}, nil
}

func (s *Service) VendorDetails(ctx context.Context, id int) (VendorItem, error) {
	v, err := s.api.GetVendor(ctx, id)
	if err != nil {
		return VendorItem{}, err
	}
	return vendorItem(v), nil
}

type DeviceItem struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number,omitempty"`
	Platform     string `json:"platform"`
	OSVersion    string `json:"os_version,omitempty"`
	Owner        string `json:"owner,omitempty"`
}

type DevicesReport struct {
	Total int `json:"total"`
	ListMeta
	Devices []DeviceItem `json:"devices"`
}

func (s *Service) ListDevices(ctx context.Context, limit int) (DevicesReport, error) {
	page, err := s.api.ListDevices(ctx, drata.ListOptions{Limit: limit})
	if err != nil {
		return DevicesReport{}, err
	}
	items := make([]DeviceItem, 0, len(page.Items))
	for _, d := range page.Items {
		items = append(items, DeviceItem{
			ID:           d.ID,
			Name:         d.Name,
			SerialNumber: d.SerialNumber,
			Platform:     d.Platform,
			OSVersion:    d.OSVersion,
			Owner:        d.User.EmailAddress(),
		})
	}
	shown, meta := capList(s, items, false)
	return DevicesReport{Total: page.Total, ListMeta: meta, Devices: shown}, nil
}

// EventsRequest filters the audit log. Category is matched client-side since
// the endpoint only filters by event type.
type EventsRequest struct {
	Limit     int
	Category  string
	EventType string
}

type EventItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
	CreatedAt   string `json:"created_at"`
	User        string `json:"user,omitempty"`
}

type EventsReport struct {
	TotalEvents int `json:"total_events"`
	ListMeta
	Events []EventItem `json:"events"`
}

// ListEvents returns audit log events, oldest first as served upstream.
func (s *Service) ListEvents(ctx context.Context, req EventsRequest) (EventsReport, error) {
	limit := req.Limit
	if limit <= 0 || limit > MaxEventLimit {
		limit = MaxEventLimit
	}
	page, err := s.api.ListEvents(ctx, drata.EventQuery{
		ListOptions: drata.ListOptions{Limit: limit},
		EventType:   req.EventType,
	})
	if err != nil {
		return EventsReport{}, err
	}
	var items []EventItem
	for _, e := range page.Items {
		if req.Category != "" && !strings.EqualFold(e.Category, req.Category) {
			continue
		}
		items = append(items, EventItem{
			ID:          string(e.ID),
			Type:        e.Type,
			Category:    e.Category,
			Description: e.Description,
			Source:      e.Source,
			CreatedAt:   e.CreatedAt,
			User:        e.User.EmailAddress(),
		})
	}
	shown, meta := capList(s, items, false)
	return EventsReport{TotalEvents: len(items), ListMeta: meta, Events: shown}, nil
}

type AssetItem struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	AssetType     string `json:"asset_type"`
	AssetProvider string `json:"asset_provider,omitempty"`
	Owner         string `json:"owner,omitempty"`
	Company       string `json:"company,omitempty"`
}

type AssetsReport struct {
	Total int `json:"total"`
	ListMeta
	Assets []AssetItem `json:"assets"`
}

// ListAssets fetches one page of assets and filters it by type client-side.
// Total counts the matching assets on that page.
func (s *Service) ListAssets(ctx context.Context, assetType string) (AssetsReport, error) {
	page, err := s.api.ListAssets(ctx, drata.ListOptions{})
	if err != nil {
		return AssetsReport{}, err
	}
	var items []AssetItem
	for _, a := range page.Items {
		if assetType != "" && !strings.EqualFold(a.AssetType, assetType) {
			continue
		}
		items = append(items, AssetItem{
			ID:            a.ID,
			Name:          a.Name,
			Description:   a.Description,
			AssetType:     a.AssetType,
			AssetProvider: a.AssetProvider,
			Owner:         a.Owner.EmailAddress(),
			Company:       a.Company,
		})
	}
	shown, meta := capList(s, items, false)
	return AssetsReport{Total: len(items), ListMeta: meta, Assets: shown}, nil
}

type UserItem struct {
	ID        int             `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	JobTitle  string          `json:"job_title,omitempty"`
	Roles     json.RawMessage `json:"roles"`
	CreatedAt string          `json:"created_at,omitempty"`
}

type UsersReport struct {
	Total int `json:"total"`
	ListMeta
	Users []UserItem `json:"users"`
}

func (s *Service) ListUsers(ctx context.Context) (UsersReport, error) {
	page, err := s.api.ListUsers(ctx, drata.ListOptions{})
	if err != nil {
		return UsersReport{}, err
	}
	items := make([]UserItem, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, UserItem{
			ID:        u.ID,
			Email:     u.Email,
			Name:      strings.TrimSpace(u.FirstName + " " + u.LastName),
			JobTitle:  u.JobTitle,
			Roles:     rawOr(u.Roles, "[]"),
			CreatedAt: u.CreatedAt,
		})
	}
	shown, meta := capList(s, items, false)
	return UsersReport{Total: page.Total, ListMeta: meta, Users: shown}, nil
}
