package domain

import "time"

// LayerRecord is one requestable WMS layer or WFS feature type.
type LayerRecord struct {
	Identifier string   `json:"identifier"`
	Title      string   `json:"title"`
	Styles     []string `json:"styles"`
	DefaultCRS string   `json:"default_crs,omitempty"` // WFS only
}

// Snapshot is the cacheable outcome of one successful fetch+parse.
// It does not know which registry key asked for it: several keys may share
// one capabilities document.
type Snapshot struct {
	Version         string        `json:"version,omitempty"`
	CapabilitiesURL string        `json:"capabilities_url"`
	Items           []LayerRecord `json:"items"`
	FetchedAt       time.Time     `json:"fetched_at"`
}

// ServiceEcho is the descriptor as returned to clients, plus what was fetched.
type ServiceEcho struct {
	ServiceDescriptor
	CapabilitiesURL string `json:"capabilities_url,omitempty"`
	Version         string `json:"version,omitempty"`
}

type Counts struct {
	Total  int  `json:"total"`
	Styles *int `json:"styles,omitempty"` // WMS only
}

// Result is the uniform success value consumed by the page and the JSON API.
type Result struct {
	Service   ServiceEcho   `json:"service"`
	Counts    Counts        `json:"counts"`
	Items     []LayerRecord `json:"items"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// NewResult wraps a snapshot for desc. Counts are always derived from the items.
func NewResult(desc ServiceDescriptor, snap Snapshot) *Result {
	items := snap.Items
	if items == nil {
		items = []LayerRecord{}
	}

	counts := Counts{Total: len(items)}
	if desc.Kind == KindWMS {
		styles := 0
		for _, it := range items {
			styles += len(it.Styles)
		}
		counts.Styles = &styles
	}

	return &Result{
		Service: ServiceEcho{
			ServiceDescriptor: desc,
			CapabilitiesURL:   snap.CapabilitiesURL,
			Version:           snap.Version,
		},
		Counts:    counts,
		Items:     items,
		FetchedAt: snap.FetchedAt,
	}
}
