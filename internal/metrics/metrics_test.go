package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestObserveAndScrape(t *testing.T) {
	m := New(func() int { return 3 })

	m.ObserveFetch("WFS", "ok", 120*time.Millisecond)
	m.ObserveFetch("WFS", "ok", 80*time.Millisecond)
	m.ObserveFetch("WMS", "network", time.Second)
	m.ObserveLookup("hit")

	body := scrape(t, m)
	for _, want := range []string{
		`data_sources_fetch_total{kind="WFS",outcome="ok"} 2`,
		`data_sources_fetch_total{kind="WMS",outcome="network"} 1`,
		`data_sources_cache_lookups_total{result="hit"} 1`,
		`data_sources_fetch_duration_seconds_count{kind="WFS"} 2`,
		`data_sources_cache_entries 3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("WMS", "ok", time.Second)
	m.ObserveLookup("miss")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}
