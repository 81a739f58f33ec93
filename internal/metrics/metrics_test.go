package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder(false)
	r.ObserveToolCall("list_controls", "ok", 120*time.Millisecond)
	r.ObserveToolCall("list_controls", "ok", 80*time.Millisecond)
	r.ObserveToolCall("list_controls", "not_found", time.Millisecond)
	r.ObserveUpstream("/public/controls", 200, 50*time.Millisecond)
	r.ObserveUpstream("/public/monitors/{id}", 0, time.Second)

	if got := testutil.ToFloat64(r.toolCalls.WithLabelValues("list_controls", "ok")); got != 2 {
		t.Fatalf("ok calls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.toolCalls.WithLabelValues("list_controls", "not_found")); got != 1 {
		t.Fatalf("not_found calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.upstreamRequests.WithLabelValues("/public/monitors/{id}", "0")); got != 1 {
		t.Fatalf("transport failures = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(r.toolDuration); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder(false)
	r.ObserveToolCall("get_compliance_summary", "ok", time.Second)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `drata_mcp_tool_calls_total{outcome="ok",tool="get_compliance_summary"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := NewRecorder(true), NewRecorder(true)
	a.ObserveToolCall("x", "ok", 0)
	if got := testutil.ToFloat64(b.toolCalls.WithLabelValues("x", "ok")); got != 0 {
		t.Fatalf("recorders share state: %v", got)
	}
}
