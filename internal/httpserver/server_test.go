package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/data-tales/data-sources/internal/cache"
	"github.com/data-tales/data-sources/internal/config"
	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/endpoint"
	"github.com/data-tales/data-sources/internal/httpserver/deps"
	"github.com/data-tales/data-sources/internal/logger"
	"github.com/data-tales/data-sources/internal/metrics"
	"github.com/data-tales/data-sources/internal/query"
	"github.com/data-tales/data-sources/internal/registry"
)

const dwdFeatureTypes = `<?xml version="1.0" encoding="UTF-8"?>
<wfs:WFS_Capabilities version="2.0.0" xmlns:wfs="http://www.opengis.net/wfs/2.0">
  <wfs:FeatureTypeList>
    <wfs:FeatureType><wfs:Name>dwd:Warngebiete</wfs:Name><wfs:Title>Warngebiete</wfs:Title><wfs:DefaultCRS>urn:ogc:def:crs:EPSG::4326</wfs:DefaultCRS></wfs:FeatureType>
    <wfs:FeatureType><wfs:Name>dwd:Stationen</wfs:Name></wfs:FeatureType>
  </wfs:FeatureTypeList>
</wfs:WFS_Capabilities>`

const radarLayers = `<WMS_Capabilities version="1.3.0"><Capability><Layer><Title>root</Title>
<Layer><Name>radar</Name><Title>Radar</Title><Style><Name>default</Name></Style><Style><Name>dark</Name></Style></Layer>
</Layer></Capability></WMS_Capabilities>`

type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  int
}

func (f *stubFetcher) Fetch(_ context.Context, u string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for prefix, body := range f.bodies {
		if strings.HasPrefix(u, prefix) {
			return []byte(body), nil
		}
	}
	return nil, domain.NewHTTPStatusError(http.StatusServiceUnavailable)
}

type testEnv struct {
	handler http.Handler
	fetcher *stubFetcher
	trigger chan struct{}
}

func newTestEnv(t *testing.T, mutate func(*deps.Deps)) *testEnv {
	t.Helper()

	descs := []domain.ServiceDescriptor{
		{Key: "dwd_wfs", Label: "DWD GeoServer (WFS)", Kind: domain.KindWFS, URL: "https://maps.dwd.de/geoserver/wfs?SERVICE=WFS"},
		{Key: "dwd_wms", Label: "DWD GeoServer (WMS)", Kind: domain.KindWMS, URL: "https://maps.dwd.de/geoserver/wms?SERVICE=WMS"},
		{Key: "broken_wms", Label: "Broken", Kind: domain.KindWMS, URL: "https://down.example.org/wms"},
	}
	reg, err := registry.New(descs, endpoint.NewValidator(0, nil))
	if err != nil {
		t.Fatal(err)
	}

	log := logger.NewNop()
	f := &stubFetcher{bodies: map[string]string{
		"https://maps.dwd.de/geoserver/wfs": dwdFeatureTypes,
		"https://maps.dwd.de/geoserver/wms": radarLayers,
	}}
	c := cache.New(log)
	m := metrics.New(c.Len)
	svc := query.New(reg, endpoint.NewValidator(0, reg.Hosts()), f, c, log, query.Options{Metrics: m})

	trigger := make(chan struct{}, 1)
	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       "test",
		Query:         svc,
		Cache:         c,
		Metrics:       m,
		ReloadTrigger: trigger,
	}
	if mutate != nil {
		mutate(&d)
	}

	cfg := &config.Config{ListenPort: ":0", RequestTimeout: 5 * time.Second}
	return &testEnv{handler: Router(cfg, log, d), fetcher: f, trigger: trigger}
}

func (e *testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAPIScenario(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api?service=dwd_wfs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := decode(t, rec)
	fetchedAt, _ := body["fetched_at"].(string)
	if _, err := time.Parse(time.RFC3339, fetchedAt); err != nil {
		t.Errorf("fetched_at = %q is not RFC3339", fetchedAt)
	}
	delete(body, "fetched_at")

	want := map[string]any{
		"ok": true,
		"service": map[string]any{
			"key":              "dwd_wfs",
			"label":            "DWD GeoServer (WFS)",
			"kind":             "WFS",
			"url":              "https://maps.dwd.de/geoserver/wfs?SERVICE=WFS",
			"capabilities_url": "https://maps.dwd.de/geoserver/wfs?SERVICE=WFS&REQUEST=GetCapabilities",
			"version":          "2.0.0",
		},
		"counts": map[string]any{"total": float64(2)},
		"items": []any{
			map[string]any{"identifier": "dwd:Warngebiete", "title": "Warngebiete", "styles": []any{}, "default_crs": "urn:ogc:def:crs:EPSG::4326"},
			map[string]any{"identifier": "dwd:Stationen", "title": "dwd:Stationen", "styles": []any{}},
		},
	}
	if !reflect.DeepEqual(body, want) {
		t.Errorf("body =\n%v\nwant\n%v", body, want)
	}
}

func TestAPIWMSCountsStyles(t *testing.T) {
	env := newTestEnv(t, nil)

	body := decode(t, env.do(t, http.MethodGet, "/api?service=dwd_wms"))
	counts, _ := body["counts"].(map[string]any)
	if counts["total"] != float64(1) || counts["styles"] != float64(2) {
		t.Errorf("counts = %v", counts)
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		status  int
		message string
	}{
		{"missing key", "/api", http.StatusBadRequest, domain.MsgMissingService},
		{"blank key", "/api?service=%20", http.StatusBadRequest, domain.MsgMissingService},
		{"unknown key", "/api?service=nope", http.StatusBadRequest, domain.MsgUnknownService},
		{"custom disabled", "/api?url=https://maps.dwd.de/geoserver/wms&kind=wms", http.StatusBadRequest, domain.MsgCustomDisabled},
		{"upstream status", "/api?service=broken_wms", http.StatusBadGateway, "responded with HTTP 503"},
	}

	env := newTestEnv(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			body := decode(t, rec)
			if body["ok"] != false {
				t.Errorf("ok = %v", body["ok"])
			}
			if msg, _ := body["error"].(string); !strings.Contains(msg, tt.message) {
				t.Errorf("error = %q, want %q", msg, tt.message)
			}
			if len(body) != 2 {
				t.Errorf("failure body has extra fields: %v", body)
			}
		})
	}
}

func TestAPIUsesCacheUnlessRefresh(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodGet, "/api?service=dwd_wfs")
	env.do(t, http.MethodGet, "/api?service=dwd_wfs")
	env.do(t, http.MethodGet, "/api?service=dwd_wfs&refresh=true")
	if env.fetcher.calls != 1 {
		t.Errorf("fetches = %d, want 1 (refresh=true is not refresh=1)", env.fetcher.calls)
	}

	env.do(t, http.MethodGet, "/api?service=dwd_wfs&refresh=1")
	if env.fetcher.calls != 2 {
		t.Errorf("fetches = %d, want 2 after refresh=1", env.fetcher.calls)
	}
}

func TestAPICustomURL(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		reg := d.Query.Registry()
		d.Query = query.New(reg, endpoint.NewValidator(0, reg.Hosts()), &stubFetcher{bodies: map[string]string{
			"https://maps.dwd.de/": radarLayers,
		}}, d.Cache, d.Logger, query.Options{AllowCustomURL: true})
	})

	body := decode(t, env.do(t, http.MethodGet, "/api?url=https://maps.dwd.de/geoserver/ows&kind=WMS"))
	svc, _ := body["service"].(map[string]any)
	if body["ok"] != true || svc["key"] != domain.CustomKey || svc["label"] != "maps.dwd.de" {
		t.Errorf("body = %v", body)
	}

	rec := env.do(t, http.MethodGet, "/api?url=https://evil.example.com/wms&kind=wms")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for host outside allow-list = %d", rec.Code)
	}
}

func TestPage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/?service=dwd_wms")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	html := rec.Body.String()
	for _, want := range []string{
		`<option value="dwd_wms" selected>`,
		"<code>radar</code>",
		"default, dark",
		`href="/api?service=dwd_wms"`,
		"REQUEST=GetCapabilities",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page is missing %q", want)
		}
	}
	if strings.Index(html, `value="dwd_wfs"`) > strings.Index(html, `value="dwd_wms"`) {
		t.Error("services are not listed in declaration order")
	}
}

func TestPageDefaultsToFirstService(t *testing.T) {
	env := newTestEnv(t, nil)

	html := env.do(t, http.MethodGet, "/").Body.String()
	if !strings.Contains(html, `<option value="dwd_wfs" selected>`) || !strings.Contains(html, "dwd:Warngebiete") {
		t.Error("page without a query should show the first service")
	}
}

func TestPageErrorCard(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/?service=broken_wms")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="error"`) {
		t.Error("page should render the error card")
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		d.RateLimitRPS = 0.001
		d.RateLimitBurst = 2
	})

	for i := 0; i < 2; i++ {
		if rec := env.do(t, http.MethodGet, "/api?service=dwd_wfs"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/api?service=dwd_wfs")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("headers = %v", rec.Header())
	}

	if rec := env.do(t, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz must not be rate limited, got %d", rec.Code)
	}
}

func TestReload(t *testing.T) {
	env := newTestEnv(t, nil)

	if rec := env.do(t, http.MethodPost, "/reload"); rec.Code != http.StatusAccepted {
		t.Errorf("first reload = %d, want 202", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/reload"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("pending reload = %d, want 429", rec.Code)
	}
	<-env.trigger
	if rec := env.do(t, http.MethodPost, "/reload"); rec.Code != http.StatusAccepted {
		t.Errorf("reload after drain = %d, want 202", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/reload"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /reload = %d, want 405", rec.Code)
	}
}

func TestAdminRoutesRestricted(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	// httptest requests come from 192.0.2.1
	for _, target := range []string{"/readyz", "/infra", "/metrics"} {
		if rec := env.do(t, http.MethodGet, target); rec.Code != http.StatusForbidden {
			t.Errorf("GET %s = %d, want 403", target, rec.Code)
		}
	}
	if rec := env.do(t, http.MethodPost, "/reload"); rec.Code != http.StatusForbidden {
		t.Errorf("POST /reload = %d, want 403", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestProbes(t *testing.T) {
	env := newTestEnv(t, nil)

	health := decode(t, env.do(t, http.MethodGet, "/healthz"))
	if health["status"] != "ok" || health["version"] != "test" {
		t.Errorf("healthz = %v", health)
	}

	ready := decode(t, env.do(t, http.MethodGet, "/readyz"))
	if ready["ready"] != true || ready["services"] != float64(3) {
		t.Errorf("readyz = %v", ready)
	}

	env.do(t, http.MethodGet, "/api?service=dwd_wfs")
	infra := decode(t, env.do(t, http.MethodGet, "/infra"))
	if infra["mode"] != "optimal" {
		t.Errorf("infra mode = %v", infra["mode"])
	}
	components, _ := infra["components"].(map[string]any)
	cacheStatus, _ := components["cache"].(map[string]any)
	if cacheStatus["entries"] != float64(1) {
		t.Errorf("cache component = %v", cacheStatus)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/api?service=dwd_wfs")

	rec := env.do(t, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	b, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(b), `kind="WFS"`) {
		t.Errorf("metrics output lacks the WFS fetch:\n%s", b)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight = %d %v", rec.Code, rec.Header())
	}
}

func TestNewDerivesWriteTimeout(t *testing.T) {
	var d deps.Deps
	newTestEnv(t, func(got *deps.Deps) { d = *got })

	cfg := &config.Config{ListenPort: ":9999", RequestTimeout: 20 * time.Second}
	s := New(cfg, logger.NewNop(), d)

	if s.http.Addr != ":9999" || s.http.WriteTimeout != 20*time.Second+writeSlack {
		t.Errorf("server = addr %q, write timeout %v", s.http.Addr, s.http.WriteTimeout)
	}
}
