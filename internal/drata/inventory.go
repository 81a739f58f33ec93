package drata

import (
	"context"
	"fmt"
	"net/url"
)

const (
	pathConnections = "/public/connections"
	pathVendors     = "/public/vendors"
	pathDevices     = "/public/devices"
	pathAssets      = "/public/assets"
	pathEvents      = "/public/events"
	pathUsers       = "/public/users"
)

func (c *Client) ListConnections(ctx context.Context, opts ListOptions) (Page[Connection], error) {
	return list[Connection](ctx, c, pathConnections, nil, opts)
}

func (c *Client) ListVendors(ctx context.Context, opts ListOptions) (Page[Vendor], error) {
	return list[Vendor](ctx, c, pathVendors, nil, opts)
}

func (c *Client) GetVendor(ctx context.Context, id int) (Vendor, error) {
	return getOne[Vendor](ctx, c, pathVendors+"/{id}", fmt.Sprintf("%s/%d", pathVendors, id), nil)
}

func (c *Client) ListDevices(ctx context.Context, opts ListOptions) (Page[Device], error) {
	return list[Device](ctx, c, pathDevices, nil, opts)
}

func (c *Client) ListAssets(ctx context.Context, opts ListOptions) (Page[Asset], error) {
	return list[Asset](ctx, c, pathAssets, nil, opts)
}

// EventQuery filters the audit log by event type.
type EventQuery struct {
	ListOptions
	EventType string
}

func (c *Client) ListEvents(ctx context.Context, q EventQuery) (Page[Event], error) {
	v := url.Values{}
	setIf(v, "eventType", q.EventType)
	return list[Event](ctx, c, pathEvents, v, q.ListOptions)
}

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (Page[User], error) {
	return list[User](ctx, c, pathUsers, nil, opts)
}
