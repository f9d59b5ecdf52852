package domain

import (
	"fmt"
	"strings"
)

// Kind is the OGC protocol a service speaks.
type Kind string

const (
	KindWMS Kind = "WMS"
	KindWFS Kind = "WFS"
)

// ParseKind accepts "wms"/"wfs" in any casing.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindWMS:
		return KindWMS, nil
	case KindWFS:
		return KindWFS, nil
	default:
		return "", fmt.Errorf("unknown service kind %q", s)
	}
}

func (k Kind) String() string { return string(k) }

// ServiceDescriptor is one declared OGC endpoint.
//
// Descriptors are created once at startup (or per custom-URL request) and
// never mutated; Key is the identity.
type ServiceDescriptor struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
	URL   string `json:"url"`
}

// CustomKey is the key echoed for ad-hoc URLs that did not come from the registry.
const CustomKey = "custom"
