package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rdwsim/internal/pathgen"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/san-kum/rdwsim/internal/redirectors"
	"github.com/san-kum/rdwsim/internal/resetters"
)

// Registry maps configuration names to fresh algorithm instances.
type Registry struct {
	redirectors map[string]func() rdw.Redirector
	resetters   map[string]func() rdw.Resetter
}

func NewRegistry() *Registry {
	r := &Registry{
		redirectors: make(map[string]func() rdw.Redirector),
		resetters:   make(map[string]func() rdw.Resetter),
	}

	r.redirectors["none"] = func() rdw.Redirector { return redirectors.Null{} }
	r.redirectors["s2c"] = func() rdw.Redirector { return redirectors.NewSteerToCenter() }
	r.redirectors["s2o"] = func() rdw.Redirector { return redirectors.NewSteerToOrbit() }
	r.redirectors["zigzag"] = func() rdw.Redirector { return redirectors.NewZigZag() }

	r.resetters["no_reset"] = func() rdw.Resetter { return resetters.Null{} }
	r.resetters["two_one_turn"] = func() rdw.Resetter { return resetters.NewTwoOneTurn() }

	return r
}

// RegisterRedirector adds or replaces a redirector factory.
func (r *Registry) RegisterRedirector(name string, fn func() rdw.Redirector) {
	r.redirectors[name] = fn
}

func (r *Registry) RegisterResetter(name string, fn func() rdw.Resetter) {
	r.resetters[name] = fn
}

func (r *Registry) GetRedirector(name string) (rdw.Redirector, error) {
	fn, ok := r.redirectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRedirector, name)
	}
	return fn(), nil
}

func (r *Registry) GetResetter(name string) (rdw.Resetter, error) {
	fn, ok := r.resetters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResetter, name)
	}
	return fn(), nil
}

func (r *Registry) GetPath(name string) (pathgen.PathSeed, error) {
	seed, err := pathgen.Lookup(name)
	if err != nil {
		return pathgen.PathSeed{}, fmt.Errorf("%w: %s", ErrUnknownPath, name)
	}
	return seed, nil
}

func (r *Registry) ListRedirectors() []string {
	return sortedKeys(r.redirectors)
}

func (r *Registry) ListResetters() []string {
	return sortedKeys(r.resetters)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
