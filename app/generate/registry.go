package generate

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownProvider = errors.New("unknown provider")

// Registry maps provider kinds to providers. A kind without a provider is
// reported as not configured.
type Registry struct {
	providers   map[string]Provider
	defaultKind string
}

func NewRegistry(defaultKind string) *Registry {
	kind, ok := Kind(defaultKind)
	if !ok {
		kind = Local
	}
	return &Registry{providers: make(map[string]Provider), defaultKind: kind}
}

func (r *Registry) Register(kind string, provider Provider) {
	if resolved, ok := Kind(kind); ok {
		kind = resolved
	}
	r.providers[kind] = provider
}

// Lookup resolves the requested kind, falling back to the default for an empty name.
func (r *Registry) Lookup(name string) (string, Provider, error) {
	kind := r.defaultKind
	if name != "" {
		resolved, ok := Kind(name)
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
		kind = resolved
	}

	provider, ok := r.providers[kind]
	if !ok {
		return kind, nil, notConfigured(kind, "no "+kind+" provider configured")
	}
	return kind, provider, nil
}

func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.providers))
	for kind := range r.providers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func (r *Registry) Provider(kind string) (Provider, bool) {
	provider, ok := r.providers[kind]
	return provider, ok
}
