package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
	"github.com/roivaz/drata-compliance-mcp/internal/report"
)

type fakeAPI struct {
	controls    []drata.Control
	monitors    []drata.Monitor
	personnel   []drata.Personnel
	policies    []drata.Policy
	userPols    []drata.UserPolicy
	connections []drata.Connection
	vendors     []drata.Vendor
	devices     []drata.Device
	assets      []drata.Asset
	events      []drata.Event
	users       []drata.User

	err error

	lastControlQuery    drata.ControlQuery
	lastUserPolicyQuery drata.UserPolicyQuery
	lastEventQuery      drata.EventQuery
}

func pageOf[T any](items []T) drata.Page[T] {
	return drata.Page[T]{Items: items, Total: len(items), Pages: 1}
}

func (f *fakeAPI) ListAllControls(_ context.Context, q drata.ControlQuery) (drata.Page[drata.Control], error) {
	f.lastControlQuery = q
	if f.err != nil {
		return drata.Page[drata.Control]{}, f.err
	}
	var out []drata.Control
	for _, c := range f.controls {
		if q.Search == "" || strings.Contains(c.Code, q.Search) || strings.Contains(c.Name, q.Search) {
			out = append(out, c)
		}
	}
	return pageOf(out), nil
}

func (f *fakeAPI) GetControl(_ context.Context, id int) (drata.Control, error) {
	for _, c := range f.controls {
		if c.ID == id {
			return c, nil
		}
	}
	return drata.Control{}, fmt.Errorf("control %d: %w", id, drata.ErrNotFound)
}

func (f *fakeAPI) ListAllMonitors(_ context.Context, q drata.MonitorQuery) (drata.Page[drata.Monitor], error) {
	if f.err != nil {
		return drata.Page[drata.Monitor]{}, f.err
	}
	var out []drata.Monitor
	for _, m := range f.monitors {
		if q.CheckResultStatus == "" || m.CheckResultStatus == q.CheckResultStatus {
			out = append(out, m)
		}
	}
	return pageOf(out), nil
}

func (f *fakeAPI) GetMonitor(_ context.Context, id int) (drata.Monitor, error) {
	for _, m := range f.monitors {
		if m.ID == id {
			return m, nil
		}
	}
	return drata.Monitor{}, fmt.Errorf("monitor %d: %w", id, drata.ErrNotFound)
}

func (f *fakeAPI) ListAllPersonnel(_ context.Context, q drata.PersonnelQuery) (drata.Page[drata.Personnel], error) {
	var out []drata.Personnel
	for _, p := range f.personnel {
		if q.EmploymentStatus == "" || p.EmploymentStatus == q.EmploymentStatus {
			out = append(out, p)
		}
	}
	return pageOf(out), nil
}

func (f *fakeAPI) GetPersonnel(_ context.Context, id int) (drata.Personnel, error) {
	for _, p := range f.personnel {
		if p.ID == id {
			return p, nil
		}
	}
	return drata.Personnel{}, fmt.Errorf("personnel %d: %w", id, drata.ErrNotFound)
}

func (f *fakeAPI) FindPersonnelByEmail(_ context.Context, email string) (drata.Personnel, error) {
	for _, p := range f.personnel {
		if p.User.EmailAddress() == email {
			return p, nil
		}
	}
	return drata.Personnel{}, fmt.Errorf("personnel %s: %w", email, drata.ErrNotFound)
}

func (f *fakeAPI) ListPolicies(context.Context, drata.ListOptions) (drata.Page[drata.Policy], error) {
	return pageOf(f.policies), nil
}

func (f *fakeAPI) ListUserPolicies(_ context.Context, q drata.UserPolicyQuery) (drata.Page[drata.UserPolicy], error) {
	f.lastUserPolicyQuery = q
	return pageOf(f.userPols), nil
}

func (f *fakeAPI) ListConnections(context.Context, drata.ListOptions) (drata.Page[drata.Connection], error) {
	return pageOf(f.connections), nil
}

func (f *fakeAPI) ListVendors(context.Context, drata.ListOptions) (drata.Page[drata.Vendor], error) {
	return pageOf(f.vendors), nil
}

func (f *fakeAPI) GetVendor(_ context.Context, id int) (drata.Vendor, error) {
	for _, v := range f.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return drata.Vendor{}, drata.ErrNotFound
}

func (f *fakeAPI) ListDevices(context.Context, drata.ListOptions) (drata.Page[drata.Device], error) {
	return pageOf(f.devices), nil
}

func (f *fakeAPI) ListAssets(context.Context, drata.ListOptions) (drata.Page[drata.Asset], error) {
	return pageOf(f.assets), nil
}

func (f *fakeAPI) ListEvents(_ context.Context, q drata.EventQuery) (drata.Page[drata.Event], error) {
	f.lastEventQuery = q
	return pageOf(f.events), nil
}

func (f *fakeAPI) ListUsers(context.Context, drata.ListOptions) (drata.Page[drata.User], error) {
	return pageOf(f.users), nil
}

func strPtr(s string) *string { return &s }

func fixture() *fakeAPI {
	return &fakeAPI{
		controls: []drata.Control{
			{ID: 1, Code: "DCF-1", Name: "Access reviews", IsReady: true, HasOwner: true, IsMonitored: true, HasEvidence: true},
			{ID: 2, Code: "DCF-2", Name: "Encryption", IsReady: false, HasOwner: true},
			{ID: 3, Code: "DCF-3", Name: "Backups", IsReady: true, HasOwner: false, HasEvidence: true},
			{ID: 4, Code: "DCF-4", Name: "Logging", IsReady: true, HasOwner: true, HasEvidence: false},
			{ID: 5, Code: "DCF-5", Name: "Training", IsReady: true, HasOwner: true, HasEvidence: true},
			{ID: 6, Code: "DCF-6", Name: "Old", ArchivedAt: strPtr("2024-01-01")},
			{ID: 7, Code: "DCF-71", Name: "MFA", IsReady: true, HasOwner: true, HasEvidence: true},
		},
		monitors: []drata.Monitor{
			{ID: 10, Name: "MFA enabled", CheckResultStatus: MonitorPassed, Controls: []drata.ControlRef{{Code: "DCF-71"}}},
			{ID: 11, Name: "Backups run", CheckResultStatus: MonitorFailed, Description: strings.Repeat("x", 300),
				Controls: []drata.ControlRef{{Code: "DCF-3"}, {Code: "DCF-71"}},
				MonitorInstances: []drata.MonitorInstance{{FailedTestDescription: "no backup", RemedyDescription: "enable backups"}}},
			{ID: 12, Name: "Logs shipped", CheckResultStatus: MonitorNotTested},
		},
		personnel: []drata.Personnel{
			{ID: 100, User: &drata.UserRef{Email: "a@example.com", FirstName: "Ann", LastName: "Lee"}, EmploymentStatus: "CURRENT_EMPLOYEE", DevicesCount: 2, DevicesFailingComplianceCount: 1},
			{ID: 101, User: &drata.UserRef{Email: "b@example.com"}, EmploymentStatus: "CURRENT_CONTRACTOR", DevicesCount: 1},
			{ID: 102, User: &drata.UserRef{Email: "c@example.com"}, EmploymentStatus: "FORMER_EMPLOYEE", DevicesFailingComplianceCount: 3},
		},
		connections: []drata.Connection{
			{ID: 1, ClientType: "AWS", State: "ACTIVE", Connected: true, ProviderTypes: []drata.ProviderType{{Value: "INFRASTRUCTURE"}}},
			{ID: 2, ClientType: "GITHUB", State: "ERROR", FailedAt: strPtr("2024-05-01")},
		},
	}
}

func newTestService(api API) *Service {
	return NewService(api, report.Limits{MaxItems: 100}, logging.Discard())
}

func TestDeriveStatusPrecedence(t *testing.T) {
	want := map[string]ControlStatus{
		"DCF-1":  StatusPassing,
		"DCF-2":  StatusNotReady,
		"DCF-3":  StatusNoOwner,
		"DCF-4":  StatusNeedsEvidence,
		"DCF-5":  StatusReady,
		"DCF-6":  StatusArchived,
		"DCF-71": StatusReady,
	}
	for _, c := range fixture().controls {
		if got := DeriveStatus(c); got != want[c.Code] {
			t.Errorf("%s: got %s, want %s", c.Code, got, want[c.Code])
		}
	}
}

func TestListControlsForwardsFilters(t *testing.T) {
	api := fixture()
	if _, err := newTestService(api).ListControls(context.Background(), ControlsRequest{Search: "DCF", FrameworkID: 3}); err != nil {
		t.Fatalf("ListControls: %v", err)
	}
	if api.lastControlQuery.Search != "DCF" || api.lastControlQuery.FrameworkID != 3 {
		t.Fatalf("unexpected upstream query %+v", api.lastControlQuery)
	}
}

func TestControlsWithIssuesIsSubsetOfListControls(t *testing.T) {
	svc := newTestService(fixture())
	ctx := context.Background()

	all, err := svc.ListControls(ctx, ControlsRequest{})
	if err != nil {
		t.Fatalf("ListControls: %v", err)
	}
	issues, err := svc.ControlsWithIssues(ctx)
	if err != nil {
		t.Fatalf("ControlsWithIssues: %v", err)
	}

	byID := map[int]ControlItem{}
	for _, c := range all.Controls {
		byID[c.ID] = c
	}
	if len(issues.Controls) != 3 {
		t.Fatalf("expected 3 controls with issues, got %d", len(issues.Controls))
	}
	for _, c := range issues.Controls {
		if !c.Status.IsIssue() {
			t.Errorf("control %s has non-issue status %s", c.Code, c.Status)
		}
		if _, ok := byID[c.ID]; !ok {
			t.Errorf("control %s missing from list_controls", c.Code)
		}
	}
	want := ControlIssueCounts{NotReady: 1, NoOwner: 1, NeedsEvidence: 1}
	if issues.Summary != want {
		t.Fatalf("summary = %+v, want %+v", issues.Summary, want)
	}
	if issues.Showing != 3 || issues.Truncated {
		t.Fatalf("unexpected meta %+v", issues.ListMeta)
	}
}

func TestListControlsStatusFilter(t *testing.T) {
	svc := newTestService(fixture())
	got, err := svc.ListControls(context.Background(), ControlsRequest{Status: StatusReady})
	if err != nil {
		t.Fatalf("ListControls: %v", err)
	}
	if len(got.Controls) != 2 {
		t.Fatalf("expected 2 READY controls, got %d", len(got.Controls))
	}
	if got.Total != 7 {
		t.Fatalf("total should count upstream matches, got %d", got.Total)
	}
}

func TestListControlsCapsItems(t *testing.T) {
	svc := NewService(fixture(), report.Limits{MaxItems: 2}, logging.Discard())
	got, err := svc.ListControls(context.Background(), ControlsRequest{})
	if err != nil {
		t.Fatalf("ListControls: %v", err)
	}
	if got.Showing != 2 || len(got.Controls) != 2 || !got.Truncated {
		t.Fatalf("expected 2 shown and truncated, got %+v", got.ListMeta)
	}
}

func TestControlDetailsJoinsMonitors(t *testing.T) {
	svc := newTestService(fixture())
	got, err := svc.ControlDetails(context.Background(), ControlLookup{Code: "DCF-71"})
	if err != nil {
		t.Fatalf("ControlDetails: %v", err)
	}
	if got.ID != 7 || got.Status != StatusReady {
		t.Fatalf("unexpected control %+v", got)
	}
	if len(got.LinkedMonitors) != 2 {
		t.Fatalf("expected 2 linked monitors, got %d", len(got.LinkedMonitors))
	}
}

func TestControlDetailsByID(t *testing.T) {
	svc := newTestService(fixture())
	got, err := svc.ControlDetails(context.Background(), ControlLookup{ID: 3})
	if err != nil {
		t.Fatalf("ControlDetails: %v", err)
	}
	if got.Code != "DCF-3" || len(got.LinkedMonitors) != 1 {
		t.Fatalf("unexpected details %+v", got)
	}
}

func TestControlDetailsNotFound(t *testing.T) {
	svc := newTestService(fixture())
	// DCF-7 is a prefix of DCF-71; the upstream search matches it but the
	// code does not.
	_, err := svc.ControlDetails(context.Background(), ControlLookup{Code: "DCF-7"})
	if !errors.Is(err, drata.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestControlDetailsPropagatesUpstreamError(t *testing.T) {
	api := fixture()
	api.err = fmt.Errorf("boom: %w", drata.ErrUpstreamUnavailable)
	_, err := newTestService(api).ControlDetails(context.Background(), ControlLookup{Code: "DCF-1"})
	if !errors.Is(err, drata.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestMonitorsForControl(t *testing.T) {
	svc := newTestService(fixture())
	got, err := svc.MonitorsForControl(context.Background(), "DCF-3")
	if err != nil {
		t.Fatalf("MonitorsForControl: %v", err)
	}
	if got.TotalMonitors != 1 || got.Monitors[0].ID != 11 {
		t.Fatalf("unexpected %+v", got)
	}
	none, err := svc.MonitorsForControl(context.Background(), "DCF-999")
	if err != nil {
		t.Fatalf("MonitorsForControl: %v", err)
	}
	if none.TotalMonitors != 0 || none.Monitors == nil {
		t.Fatalf("expected empty non-nil list, got %+v", none)
	}
}

func TestFailingMonitorsIsSubsetOfListMonitors(t *testing.T) {
	svc := newTestService(fixture())
	ctx := context.Background()

	all, err := svc.ListMonitors(ctx, "")
	if err != nil {
		t.Fatalf("ListMonitors: %v", err)
	}
	if all.Summary != (MonitorCounts{Passed: 1, Failed: 1, NotTested: 1}) {
		t.Fatalf("unexpected summary %+v", all.Summary)
	}
	failing, err := svc.FailingMonitors(ctx)
	if err != nil {
		t.Fatalf("FailingMonitors: %v", err)
	}
	ids := map[int]string{}
	for _, m := range all.Monitors {
		ids[m.ID] = m.Status
	}
	for _, m := range failing.FailingMonitors {
		if ids[m.ID] != MonitorFailed {
			t.Errorf("monitor %d is not FAILED in list_monitors", m.ID)
		}
	}
	if failing.TotalFailed != 1 || failing.Message != "1 tests failing" {
		t.Fatalf("unexpected report %+v", failing)
	}
	m := failing.FailingMonitors[0]
	if len([]rune(m.Description)) != descriptionPreviewRunes {
		t.Fatalf("description not truncated: %d runes", len([]rune(m.Description)))
	}
	if strings.Join(m.Controls, ",") != "DCF-3,DCF-71" {
		t.Fatalf("unexpected controls %v", m.Controls)
	}
}

func TestFailingMonitorsAllPassing(t *testing.T) {
	api := fixture()
	api.monitors = api.monitors[:1]
	got, err := newTestService(api).FailingMonitors(context.Background())
	if err != nil {
		t.Fatalf("FailingMonitors: %v", err)
	}
	if got.Message != "All tests passing" || got.FailingMonitors == nil || len(got.FailingMonitors) != 0 {
		t.Fatalf("unexpected report %+v", got)
	}
}

func TestMonitorDetails(t *testing.T) {
	svc := newTestService(fixture())
	got, err := svc.MonitorDetails(context.Background(), 11)
	if err != nil {
		t.Fatalf("MonitorDetails: %v", err)
	}
	if got.FailedTestDescription != "no backup" || got.RemedyDescription != "enable backups" {
		t.Fatalf("unexpected instance text %+v", got)
	}
	if _, err := svc.MonitorDetails(context.Background(), 999); !errors.Is(err, drata.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPersonnelReports(t *testing.T) {
	svc := newTestService(fixture())
	ctx := context.Background()

	all, err := svc.ListPersonnel(ctx, "")
	if err != nil {
		t.Fatalf("ListPersonnel: %v", err)
	}
	if all.Summary.CurrentEmployeesContractors != 2 || all.Summary.WithFailingDevices != 2 {
		t.Fatalf("unexpected summary %+v", all.Summary)
	}
	if all.Personnel[0].Name != "Ann Lee" {
		t.Fatalf("unexpected name %q", all.Personnel[0].Name)
	}

	issues, err := svc.PersonnelWithIssues(ctx)
	if err != nil {
		t.Fatalf("PersonnelWithIssues: %v", err)
	}
	// Former staff with failing devices are not counted.
	if issues.TotalWithIssues != 1 || issues.Personnel[0].ID != 100 {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestPersonnelDetailsLookup(t *testing.T) {
	svc := newTestService(fixture())
	ctx := context.Background()

	byEmail, err := svc.PersonnelDetails(ctx, PersonnelLookup{Email: "b@example.com"})
	if err != nil {
		t.Fatalf("PersonnelDetails: %v", err)
	}
	if byEmail.ID != 101 || string(byEmail.Devices) != "[]" || string(byEmail.ComplianceChecks) != "{}" {
		t.Fatalf("unexpected details %+v", byEmail)
	}
	if _, err := svc.PersonnelDetails(ctx, PersonnelLookup{ID: 5}); !errors.Is(err, drata.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPendingPolicyAcknowledgments(t *testing.T) {
	api := fixture()
	api.userPols = []drata.UserPolicy{
		{ID: 1, Policy: &drata.PolicyRef{Name: "Acceptable Use", Version: "3"}, User: &drata.UserRef{Email: "a@example.com", Name: "Ann"}},
		{ID: 2, User: &drata.UserRef{Email: "b@example.com"}},
	}
	got, err := newTestService(api).PendingPolicyAcknowledgments(context.Background(), 10)
	if err != nil {
		t.Fatalf("PendingPolicyAcknowledgments: %v", err)
	}
	q := api.lastUserPolicyQuery
	if q.Acknowledged == nil || *q.Acknowledged || q.Limit != 10 {
		t.Fatalf("unexpected query %+v", q)
	}
	if got.TotalPending != 2 || got.Message != "2 policy acknowledgments pending" {
		t.Fatalf("unexpected report %+v", got)
	}
	if got.Pending[0].PolicyVersion != "3" || got.Pending[0].UserName != "Ann" {
		t.Fatalf("unexpected item %+v", got.Pending[0])
	}
}

func TestListConnectionsCounts(t *testing.T) {
	got, err := newTestService(fixture()).ListConnections(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if got.Summary != (ConnectionCounts{Active: 1, WithFailures: 1}) {
		t.Fatalf("unexpected summary %+v", got.Summary)
	}
	if got.Connections[0].ProviderTypes[0] != "INFRASTRUCTURE" {
		t.Fatalf("unexpected provider types %v", got.Connections[0].ProviderTypes)
	}
}

func TestListEventsCategoryAndLimit(t *testing.T) {
	api := fixture()
	api.events = []drata.Event{
		{ID: "e1", Category: "MONITOR", Type: "MONITOR_FAILED"},
		{ID: "e2", Category: "POLICY"},
		{ID: "e3", Category: "MONITOR"},
	}
	got, err := newTestService(api).ListEvents(context.Background(), EventsRequest{Limit: 500, Category: "monitor"})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if api.lastEventQuery.Limit != MaxEventLimit {
		t.Fatalf("limit not clamped: %d", api.lastEventQuery.Limit)
	}
	if got.TotalEvents != 2 || got.Events[0].ID != "e1" || got.Events[1].ID != "e3" {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestListAssetsTypeFilter(t *testing.T) {
	api := fixture()
	api.assets = []drata.Asset{
		{ID: 1, AssetType: "PHYSICAL", Owner: &drata.UserRef{Email: "a@example.com"}},
		{ID: 2, AssetType: "CLOUD"},
	}
	got, err := newTestService(api).ListAssets(context.Background(), "PHYSICAL")
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if got.Total != 1 || got.Assets[0].Owner != "a@example.com" {
		t.Fatalf("unexpected assets %+v", got)
	}
}

func TestComplianceSummary(t *testing.T) {
	got, err := newTestService(fixture()).ComplianceSummary(context.Background())
	if err != nil {
		t.Fatalf("ComplianceSummary: %v", err)
	}
	// One failed monitor, one current person with failing devices and one
	// failed connection. Control readiness does not add to the total.
	if got.TotalIssues != 3 || got.Status != OverallNeedsAttention {
		t.Fatalf("unexpected summary %+v", got)
	}
	if !strings.HasPrefix(got.Recommendation, "Priority: Investigate 1 failing monitors") {
		t.Fatalf("unexpected recommendation %q", got.Recommendation)
	}
	if got.Summary.Controls.Total != 7 || got.Summary.Controls.Breakdown[StatusReady] != 2 {
		t.Fatalf("unexpected controls area %+v", got.Summary.Controls)
	}
	if got.Summary.Monitors.Status != "CRITICAL" || got.Summary.Personnel.Status != "WARNING" {
		t.Fatalf("unexpected area statuses %+v", got.Summary)
	}

	md := got.Markdown()
	for _, want := range []string{"**Status**: NEEDS_ATTENTION", "- Failed: 1 (CRITICAL)", "## Recommendation"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestComplianceSummaryCompliant(t *testing.T) {
	api := fixture()
	api.monitors = api.monitors[:1]
	api.personnel = api.personnel[1:]
	api.connections = api.connections[:1]
	got, err := newTestService(api).ComplianceSummary(context.Background())
	if err != nil {
		t.Fatalf("ComplianceSummary: %v", err)
	}
	if got.Status != OverallCompliant || got.Recommendation != "All systems compliant - ready for audit" {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestRecommendationPriority(t *testing.T) {
	cases := []struct {
		monitors, personnel, connections int
		prefix                           string
	}{
		{1, 1, 1, "Priority: Investigate"},
		{0, 1, 1, "Priority: Fix 1 failed connections"},
		{0, 2, 0, "Action needed: 2 personnel"},
		{0, 0, 0, "All systems compliant"},
	}
	for _, tc := range cases {
		if got := recommendation(tc.monitors, tc.personnel, tc.connections); !strings.HasPrefix(got, tc.prefix) {
			t.Errorf("recommendation(%d,%d,%d) = %q", tc.monitors, tc.personnel, tc.connections, got)
		}
	}
}

func TestReportsAreIdempotent(t *testing.T) {
	svc := newTestService(fixture())
	ctx := context.Background()
	render := func() string {
		s, err := svc.ComplianceSummary(ctx)
		if err != nil {
			t.Fatalf("ComplianceSummary: %v", err)
		}
		c, err := svc.ListControls(ctx, ControlsRequest{})
		if err != nil {
			t.Fatalf("ListControls: %v", err)
		}
		b, _ := json.Marshal([]any{s, c})
		return string(b)
	}
	if first, second := render(), render(); first != second {
		t.Fatalf("outputs differ:\n%s\n%s", first, second)
	}
}
