// Package registry holds the fixed set of OGC endpoints the explorer may query.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/data-tales/data-sources/internal/domain"
)

// URLValidator is satisfied by *endpoint.Validator.
type URLValidator interface {
	Validate(raw string, custom bool) (string, error)
}

// Registry is an immutable key -> descriptor table. Safe for concurrent use.
type Registry struct {
	order []domain.ServiceDescriptor
	byKey map[string]domain.ServiceDescriptor
	hosts []string
}

// New builds a registry from descs in the given order. When v is non-nil
// every URL must pass it; a registry never carries an endpoint the fetcher
// would refuse.
func New(descs []domain.ServiceDescriptor, v URLValidator) (*Registry, error) {
	r := &Registry{
		order: make([]domain.ServiceDescriptor, 0, len(descs)),
		byKey: make(map[string]domain.ServiceDescriptor, len(descs)),
	}
	seenHost := make(map[string]struct{})

	for _, d := range descs {
		d.Key = strings.TrimSpace(d.Key)
		d.URL = strings.TrimSpace(d.URL)
		if d.Key == "" {
			return nil, errors.New("registry: service with empty key")
		}
		if d.Key == domain.CustomKey {
			return nil, fmt.Errorf("registry: key %q is reserved", d.Key)
		}
		if _, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("registry: duplicate key %q", d.Key)
		}
		if d.Kind != domain.KindWMS && d.Kind != domain.KindWFS {
			return nil, fmt.Errorf("registry: service %q has invalid kind %q", d.Key, d.Kind)
		}
		if d.Label == "" {
			d.Label = d.Key
		}
		if v != nil {
			if _, err := v.Validate(d.URL, false); err != nil {
				return nil, fmt.Errorf("registry: service %q: %w", d.Key, err)
			}
		}

		u, err := url.Parse(d.URL)
		if err != nil || u.Hostname() == "" {
			return nil, fmt.Errorf("registry: service %q has invalid url", d.Key)
		}
		host := strings.ToLower(u.Hostname())
		if _, ok := seenHost[host]; !ok {
			seenHost[host] = struct{}{}
			r.hosts = append(r.hosts, host)
		}

		r.order = append(r.order, d)
		r.byKey[d.Key] = d
	}

	return r, nil
}

// Lookup returns the descriptor for key or a NotFoundError.
func (r *Registry) Lookup(key string) (domain.ServiceDescriptor, error) {
	d, ok := r.byKey[strings.TrimSpace(key)]
	if !ok {
		return domain.ServiceDescriptor{}, domain.NewNotFoundError()
	}
	return d, nil
}

// All returns the descriptors in declaration order.
func (r *Registry) All() []domain.ServiceDescriptor {
	out := make([]domain.ServiceDescriptor, len(r.order))
	copy(out, r.order)
	return out
}

// Keys returns the keys in declaration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	for i, d := range r.order {
		out[i] = d.Key
	}
	return out
}

// Hosts returns the distinct lowercase hosts of all endpoints.
func (r *Registry) Hosts() []string {
	out := make([]string, len(r.hosts))
	copy(out, r.hosts)
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Merge overlays extra on base: an existing key is replaced in place, new
// keys are appended in their own order.
func Merge(base, extra []domain.ServiceDescriptor) []domain.ServiceDescriptor {
	out := make([]domain.ServiceDescriptor, len(base), len(base)+len(extra))
	copy(out, base)

	idx := make(map[string]int, len(out))
	for i, d := range out {
		idx[d.Key] = i
	}
	for _, d := range extra {
		if i, ok := idx[d.Key]; ok {
			out[i] = d
			continue
		}
		idx[d.Key] = len(out)
		out = append(out, d)
	}
	return out
}
