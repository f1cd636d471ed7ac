package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordSyncAction("create")
	m.RecordSyncAction("create")
	m.RecordSyncAction("update")
	m.RecordGraphRequest(http.MethodPost, "2xx")
	m.RecordGroupCreated()
	m.RecordRunDuration(3 * time.Second)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	for _, name := range []string{
		"capolicy_sync_actions_total",
		"capolicy_graph_requests_total",
		"capolicy_run_duration_seconds",
		"capolicy_groups_created_total",
	} {
		if !found[name] {
			t.Errorf("expected metric family %s", name)
		}
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordSyncAction("create")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "capolicy_sync_actions_total") {
		t.Errorf("expected sync actions metric in output")
	}
}
