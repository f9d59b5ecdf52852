package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/data-tales/data-sources/internal/domain"
)

// File is the top-level structure of a service file.
type File struct {
	Services []FileEntry `yaml:"services"`
}

// FileEntry is one service as written in YAML. Kind is "wms" or "wfs".
type FileEntry struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label,omitempty"`
	Kind  string `yaml:"kind"`
	URL   string `yaml:"url"`
}

// LoadFile reads a service file and maps it to descriptors.
func LoadFile(path string) ([]domain.ServiceDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service file: %w", err)
	}
	return Parse(data)
}

// Parse decodes service file content.
func Parse(data []byte) ([]domain.ServiceDescriptor, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse service yaml: %w", err)
	}

	out := make([]domain.ServiceDescriptor, 0, len(f.Services))
	for i, e := range f.Services {
		kind, err := domain.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("service #%d (%s): %w", i+1, e.Key, err)
		}
		out = append(out, domain.ServiceDescriptor{
			Key:   strings.TrimSpace(e.Key),
			Label: strings.TrimSpace(e.Label),
			Kind:  kind,
			URL:   strings.TrimSpace(e.URL),
		})
	}
	return out, nil
}
