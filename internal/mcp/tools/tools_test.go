package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/roivaz/drata-compliance-mcp/internal/compliance"
	"github.com/roivaz/drata-compliance-mcp/internal/dispatch"
	"github.com/roivaz/drata-compliance-mcp/internal/drata"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
	"github.com/roivaz/drata-compliance-mcp/internal/report"
)

var upstreamFixtures = map[string]string{
	"/public/controls": `{"data":[
		{"id":1,"code":"DCF-1","name":"Access","isReady":true,"hasOwner":true,"isMonitored":true,"hasEvidence":true},
		{"id":2,"code":"DCF-2","name":"Encryption","isReady":false,"hasOwner":true}],"total":2}`,
	"/public/controls/2": `{"id":2,"code":"DCF-2","name":"Encryption","isReady":false,"hasOwner":true}`,
	"/public/monitors": `{"data":[
		{"id":42,"name":"MFA","checkResultStatus":"FAILED","controls":[{"id":1,"code":"DCF-1"}]}],"total":1}`,
	"/public/monitors/42": `{"id":42,"name":"MFA","checkResultStatus":"FAILED","monitorInstances":[{"remedyDescription":"enable MFA"}]}`,
	"/public/personnel": `{"data":[
		{"id":7,"user":{"email":"a@example.com","firstName":"Ann"},"employmentStatus":"CURRENT_EMPLOYEE","devicesFailingComplianceCount":1}],"total":1}`,
	"/public/personnel/7":   `{"id":7,"user":{"email":"a@example.com"},"employmentStatus":"CURRENT_EMPLOYEE"}`,
	"/public/policies":      `{"data":[{"id":1,"name":"Acceptable Use","version":2}],"total":1}`,
	"/public/user-policies": `{"data":[{"id":5,"policy":{"name":"Acceptable Use","version":"2"},"user":{"email":"a@example.com"}}],"total":1}`,
	"/public/connections":   `{"data":[{"id":1,"clientType":"AWS","state":"ACTIVE","providerTypes":[{"value":"INFRASTRUCTURE"}]}],"total":1}`,
	"/public/vendors":       `{"data":[{"id":3,"name":"Acme","riskLevel":"LOW"}],"total":1}`,
	"/public/vendors/3":     `{"id":3,"name":"Acme","riskLevel":"LOW"}`,
	"/public/devices":       `{"data":[{"id":9,"name":"laptop","user":{"email":"a@example.com"}}],"total":1}`,
	"/public/assets":        `{"data":[{"id":4,"name":"db","assetType":"CLOUD"}],"total":1}`,
	"/public/events":        `{"data":[{"id":"3f1c","category":"MONITOR","type":"TEST_FAILED"}],"total":1}`,
	"/public/users":         `{"data":[{"id":1,"email":"admin@example.com","roles":["ADMIN"]}],"total":1}`,
}

func newTestDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	return newDispatcherFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := upstreamFixtures[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newDispatcherFor(t *testing.T, upstream http.Handler) *dispatch.Dispatcher {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client, err := drata.NewClient(drata.Config{APIKey: "k", BaseURL: srv.URL, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc := compliance.NewService(client, report.Limits{MaxItems: 100}, logging.Discard())
	reg, err := NewRegistry(svc)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return dispatch.NewDispatcher(reg, logging.Discard())
}

func TestEveryToolSucceedsAgainstHealthyUpstream(t *testing.T) {
	d := newTestDispatcher(t)
	args := map[string]map[string]any{
		"get_control_details":      {"control_code": "DCF-1"},
		"get_monitors_for_control": {"control_code": "DCF-1"},
		"get_monitor_details":      {"monitor_id": float64(42)},
		"get_personnel_details":    {"personnel_id": float64(7)},
		"get_vendor_details":       {"vendor_id": float64(3)},
	}
	tools := d.Registry().Tools()
	if len(tools) != 20 {
		t.Fatalf("expected 20 tools, got %d", len(tools))
	}
	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			got, err := d.Dispatch(context.Background(), tool.Name, args[tool.Name])
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if _, err := json.Marshal(got); err != nil {
				t.Fatalf("result does not marshal: %v", err)
			}
		})
	}
}

func TestToolErrorKinds(t *testing.T) {
	d := newTestDispatcher(t)
	cases := []struct {
		tool string
		args map[string]any
		want dispatch.Kind
	}{
		{"get_control_details", map[string]any{"control_code": "DCF-404"}, dispatch.KindNotFound},
		{"get_control_details", map[string]any{}, dispatch.KindInvalidArgument},
		{"get_personnel_details", nil, dispatch.KindInvalidArgument},
		{"get_monitor_details", map[string]any{"monitor_id": float64(1)}, dispatch.KindNotFound},
		{"get_monitor_details", map[string]any{"monitor_id": "abc"}, dispatch.KindInvalidArgument},
		{"list_monitors", map[string]any{"status": "BROKEN"}, dispatch.KindInvalidArgument},
		{"list_policies", map[string]any{"limit": float64(500)}, dispatch.KindInvalidArgument},
		{"delete_everything", nil, dispatch.KindUnknownTool},
	}
	for _, tc := range cases {
		_, err := d.Dispatch(context.Background(), tc.tool, tc.args)
		if got := dispatch.KindOf(err); got != tc.want {
			t.Errorf("%s %v: got %q (%v), want %q", tc.tool, tc.args, got, err, tc.want)
		}
	}
}

func TestControlDetailsByID(t *testing.T) {
	d := newTestDispatcher(t)
	got, err := d.Dispatch(context.Background(), "get_control_details", map[string]any{"control_id": float64(2)})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	details := got.(compliance.ControlDetails)
	if details.Code != "DCF-2" || details.Status != compliance.StatusNotReady {
		t.Fatalf("unexpected details %+v", details)
	}
}

func TestToolsAreDescribed(t *testing.T) {
	for _, tool := range All(nil) {
		if tool.Description == "" || tool.Title == "" {
			t.Errorf("%s lacks a title or description", tool.Name)
		}
		if strings.ToLower(tool.Name) != tool.Name {
			t.Errorf("%s is not snake_case", tool.Name)
		}
		for _, p := range tool.Params {
			if p.Description == "" {
				t.Errorf("%s.%s lacks a description", tool.Name, p.Name)
			}
		}
	}
}

// A short code also matches longer codes upstream; the exact match may sit
// beyond the first page of search results.
func TestControlDetailsExactCodeOnLaterPage(t *testing.T) {
	d := newDispatcherFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/controls":
			var codes []string
			for i := 10; i < 70; i++ {
				codes = append(codes, "DCF-"+strconv.Itoa(i))
			}
			codes = append(codes, "DCF-1")
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			var data []map[string]any
			for i := (page - 1) * limit; i < page*limit && i < len(codes); i++ {
				data = append(data, map[string]any{"id": i + 100, "code": codes[i], "name": "Control", "isReady": true, "hasOwner": true})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "total": len(codes)})
		case "/public/monitors":
			_, _ = w.Write([]byte(`{"data":[],"total":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	got, err := d.Dispatch(context.Background(), "get_control_details", map[string]any{"control_code": "DCF-1"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if details := got.(compliance.ControlDetails); details.Code != "DCF-1" || details.ID != 160 {
		t.Fatalf("unexpected control %+v", details)
	}
}

func TestListControlsFrameworkFilter(t *testing.T) {
	var framework string
	d := newDispatcherFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		framework = r.URL.Query().Get("frameworkId")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"code":"DCF-1","isReady":true,"hasOwner":true}],"total":1}`))
	}))

	if _, err := d.Dispatch(context.Background(), "list_controls", map[string]any{"framework_id": "12"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if framework != "12" {
		t.Fatalf("frameworkId = %q", framework)
	}
	_, err := d.Dispatch(context.Background(), "list_controls", map[string]any{"framework_id": float64(0)})
	if dispatch.KindOf(err) != dispatch.KindInvalidArgument {
		t.Fatalf("expected invalid framework_id, got %v", err)
	}
}
