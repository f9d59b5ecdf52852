// Package ogc fetches and parses OGC WMS/WFS GetCapabilities documents.
package ogc

import (
	"errors"
	"fmt"

	"github.com/data-tales/data-sources/internal/domain"
)

// Document is the normalized content of a capabilities document.
type Document struct {
	Version string
	Items   []domain.LayerRecord
}

var (
	wmsRoots = map[string]bool{"WMS_Capabilities": true, "WMT_MS_Capabilities": true}
	wfsRoot  = "WFS_Capabilities"

	// WFS 2.0, 1.1 and 1.0 spell the default CRS differently.
	crsElements = []string{"DefaultCRS", "DefaultSRS", "SRS"}
)

// Parse extracts the layers (WMS) or feature types (WFS) of data in document
// order. Every failure is a ParseError for kind.
func Parse(data []byte, kind domain.Kind) (Document, error) {
	root, err := decodeTree(data)
	if err != nil {
		return Document{}, domain.NewParseError(kind, err)
	}

	var items []domain.LayerRecord
	switch kind {
	case domain.KindWMS:
		items, err = parseWMS(root)
	case domain.KindWFS:
		items, err = parseWFS(root)
	default:
		err = fmt.Errorf("unsupported kind %q", kind)
	}
	if err != nil {
		return Document{}, domain.NewParseError(kind, err)
	}

	if items == nil {
		items = []domain.LayerRecord{}
	}
	return Document{Version: root.attr("version"), Items: items}, nil
}

func parseWMS(root *node) ([]domain.LayerRecord, error) {
	if !wmsRoots[root.name] {
		return nil, fmt.Errorf("unexpected root element %q for WMS", root.name)
	}
	capability := root.child("Capability")
	if capability == nil {
		return nil, errors.New("WMS document has no Capability section")
	}

	var out []domain.LayerRecord
	var walk func(*node)
	walk = func(layer *node) {
		if name := layer.childText("Name"); name != "" {
			out = append(out, domain.LayerRecord{
				Identifier: name,
				Title:      titleOr(layer, name),
				Styles:     styleNames(layer),
			})
		}
		for _, sub := range layer.childrenNamed("Layer") {
			walk(sub)
		}
	}
	for _, top := range capability.childrenNamed("Layer") {
		walk(top)
	}
	return out, nil
}

func styleNames(layer *node) []string {
	styles := []string{}
	for _, s := range layer.childrenNamed("Style") {
		if name := s.childText("Name"); name != "" {
			styles = append(styles, name)
		}
	}
	return styles
}

func parseWFS(root *node) ([]domain.LayerRecord, error) {
	if root.name != wfsRoot {
		return nil, fmt.Errorf("unexpected root element %q for WFS", root.name)
	}

	var types []*node
	if list := root.child("FeatureTypeList"); list != nil {
		types = list.childrenNamed("FeatureType")
	} else {
		types = root.descendants("FeatureType")
	}

	var out []domain.LayerRecord
	for _, ft := range types {
		name := ft.childText("Name")
		if name == "" {
			continue
		}
		out = append(out, domain.LayerRecord{
			Identifier: name,
			Title:      titleOr(ft, name),
			Styles:     []string{},
			DefaultCRS: defaultCRS(ft),
		})
	}
	return out, nil
}

func defaultCRS(ft *node) string {
	for _, el := range crsElements {
		if v := ft.childText(el); v != "" {
			return v
		}
	}
	return ""
}

func titleOr(n *node, fallback string) string {
	if t := n.childText("Title"); t != "" {
		return t
	}
	return fallback
}
