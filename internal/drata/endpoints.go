package drata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	pathControls   = "/public/controls"
	pathMonitors   = "/public/monitors"
	pathPersonnel  = "/public/personnel"
	pathPolicies   = "/public/policies"
	pathUserPolicy = "/public/user-policies"
)

// ControlQuery filters the controls list. Search matches name, code and
// description.
type ControlQuery struct {
	Search      string
	FrameworkID int
}

func (q ControlQuery) values() url.Values {
	v := url.Values{}
	setIf(v, "q", q.Search)
	if q.FrameworkID > 0 {
		v.Set("frameworkId", strconv.Itoa(q.FrameworkID))
	}
	return v
}

func (c *Client) ListAllControls(ctx context.Context, q ControlQuery) (Page[Control], error) {
	return listAll[Control](ctx, c, pathControls, q.values())
}

func (c *Client) GetControl(ctx context.Context, id int) (Control, error) {
	return getOne[Control](ctx, c, pathControls+"/{id}", fmt.Sprintf("%s/%d", pathControls, id), nil)
}

// MonitorQuery filters monitors by check result (PASSED, FAILED, NOT_TESTED).
type MonitorQuery struct {
	CheckResultStatus string
}

func (q MonitorQuery) values() url.Values {
	v := url.Values{}
	setIf(v, "checkResultStatus", q.CheckResultStatus)
	return v
}

func (c *Client) ListAllMonitors(ctx context.Context, q MonitorQuery) (Page[Monitor], error) {
	return listAll[Monitor](ctx, c, pathMonitors, q.values())
}

func (c *Client) GetMonitor(ctx context.Context, id int) (Monitor, error) {
	return getOne[Monitor](ctx, c, pathMonitors+"/{id}", fmt.Sprintf("%s/%d", pathMonitors, id), nil)
}

// PersonnelQuery filters personnel by employment status or exact email.
type PersonnelQuery struct {
	ListOptions
	EmploymentStatus string
	Email            string
}

func (q PersonnelQuery) values() url.Values {
	v := url.Values{}
	setIf(v, "employmentStatus", q.EmploymentStatus)
	setIf(v, "email", q.Email)
	return v
}

func (c *Client) ListPersonnel(ctx context.Context, q PersonnelQuery) (Page[Personnel], error) {
	return list[Personnel](ctx, c, pathPersonnel, q.values(), q.ListOptions)
}

func (c *Client) ListAllPersonnel(ctx context.Context, q PersonnelQuery) (Page[Personnel], error) {
	return listAll[Personnel](ctx, c, pathPersonnel, q.values())
}

func (c *Client) GetPersonnel(ctx context.Context, id int) (Personnel, error) {
	return getOne[Personnel](ctx, c, pathPersonnel+"/{id}", fmt.Sprintf("%s/%d", pathPersonnel, id), nil)
}

// FindPersonnelByEmail returns the first personnel record for the email, or an
// APIError wrapping ErrNotFound.
func (c *Client) FindPersonnelByEmail(ctx context.Context, email string) (Personnel, error) {
	page, err := c.ListPersonnel(ctx, PersonnelQuery{Email: email})
	if err != nil {
		return Personnel{}, err
	}
	if len(page.Items) == 0 {
		return Personnel{}, newAPIError(http.StatusNotFound, pathPersonnel, fmt.Sprintf("personnel not found: %s", email))
	}
	return page.Items[0], nil
}

func (c *Client) ListPolicies(ctx context.Context, opts ListOptions) (Page[Policy], error) {
	return list[Policy](ctx, c, pathPolicies, nil, opts)
}

// UserPolicyQuery filters policy assignments by acknowledgment state; nil
// Acknowledged means no filter.
type UserPolicyQuery struct {
	ListOptions
	Acknowledged *bool
}

func (q UserPolicyQuery) values() url.Values {
	v := url.Values{}
	if q.Acknowledged != nil {
		v.Set("acknowledged", strconv.FormatBool(*q.Acknowledged))
	}
	return v
}

func (c *Client) ListUserPolicies(ctx context.Context, q UserPolicyQuery) (Page[UserPolicy], error) {
	return list[UserPolicy](ctx, c, pathUserPolicy, q.values(), q.ListOptions)
}
