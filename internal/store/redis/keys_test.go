package redis

import "testing"

func TestCapabilitiesKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WFS|https://maps.dwd.de/geoserver/wfs", "ds:capabilities:WFS|https://maps.dwd.de/geoserver/wfs"},
		{"WMS|https://example.org/ows?map=a", "ds:capabilities:WMS|https://example.org/ows?map=a"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CapabilitiesKey(tt.in); got != tt.want {
				t.Errorf("CapabilitiesKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewStoreDefaultTTL(t *testing.T) {
	if s := NewStore(nil, 0); s.ttl != DefaultCacheTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultCacheTTL)
	}
}
