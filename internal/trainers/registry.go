// Package trainers maps algorithm identifiers to trainer constructors and
// the parameter contracts they are bound with.
package trainers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/riahtu/pmtrain/internal/bind"
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
)

// Constructor builds one stage from values already extracted against the
// entry's descriptor. It calls exactly one Learning Context factory.
type Constructor func(lc *mlctx.Context, v bind.Values) (mlctx.Estimator, error)

type Entry struct {
	Descriptor models.Descriptor
	Construct  Constructor
}

// Build extracts the entry's params from node and constructs the stage.
// Factory rejections are reported as UnsupportedParameterCombination.
func (e *Entry) Build(lc *mlctx.Context, node models.Node, path string) (mlctx.Estimator, error) {
	d := e.Descriptor
	if !lc.Supports(d.Family) {
		return nil, bind.Unsupported(path, d.Kind, fmt.Errorf("learning context has no %s trainers", d.Family))
	}
	values, err := bind.ExtractAll(node, path, d)
	if err != nil {
		return nil, err
	}
	est, err := e.Construct(lc, values)
	if err != nil {
		return nil, bind.Unsupported(path, d.Kind, err)
	}
	return est, nil
}

// Registry resolves identifiers and aliases to entries. It is read-only
// once built and safe for concurrent use.
type Registry struct {
	entries []*Entry
	byName  map[string]*Entry
	// folded maps lower-cased names to their registered spelling.
	folded map[string]string
}

func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Entry),
		folded: make(map[string]string),
	}
	for i := range entries {
		e := entries[i]
		d := e.Descriptor
		if d.Kind == "" {
			return nil, fmt.Errorf("entry %d has no identifier", i)
		}
		if !d.Family.Valid() {
			return nil, fmt.Errorf("%s: unknown family %q", d.Kind, d.Family)
		}
		if e.Construct == nil {
			return nil, fmt.Errorf("%s: no constructor", d.Kind)
		}
		seen := make(map[string]bool, len(d.Params))
		for _, p := range d.Params {
			if seen[p.Name] {
				return nil, fmt.Errorf("%s: param %q declared twice", d.Kind, p.Name)
			}
			seen[p.Name] = true
		}

		r.entries = append(r.entries, &e)
		for _, name := range append([]string{d.Kind}, d.Aliases...) {
			if prev, ok := r.byName[name]; ok {
				return nil, fmt.Errorf("%s: identifier %q already registered by %s", d.Kind, name, prev.Descriptor.Kind)
			}
			r.byName[name] = &e
			r.folded[strings.ToLower(name)] = name
		}
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of the built-in catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(Catalog())
		if err != nil {
			panic(fmt.Sprintf("trainers: invalid built-in catalog: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

func (r *Registry) Resolve(identifier string) (*Entry, error) {
	if e, ok := r.byName[identifier]; ok {
		return e, nil
	}
	err := bind.Unknown("", identifier)
	if hint := r.suggest(identifier); hint != "" {
		err.Detail = fmt.Sprintf("did you mean %q?", hint)
	}
	return nil, err
}

// ResolveNode reads the node's Kind and resolves it. path is reported in
// errors.
func (r *Registry) ResolveNode(node models.Node, path string) (*Entry, error) {
	raw, err := bind.Extract(node, path, models.Param{Name: models.KindField, Type: models.TypeString})
	if err != nil {
		return nil, err
	}
	e, err := r.Resolve(raw.(string))
	if err != nil {
		err.(*bind.Error).Path = path
		return nil, err
	}
	return e, nil
}

func (r *Registry) suggest(identifier string) string {
	lower := strings.ToLower(strings.TrimSpace(identifier))
	if name, ok := r.folded[lower]; ok {
		return name
	}
	if name, ok := r.folded[lower+"trainer"]; ok {
		return name
	}
	return ""
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Descriptors returns every descriptor in catalog order.
func (r *Registry) Descriptors() []models.Descriptor {
	out := make([]models.Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Descriptor)
	}
	return out
}

func (r *Registry) Family(f mlctx.Family) []models.Descriptor {
	var out []models.Descriptor
	for _, e := range r.entries {
		if e.Descriptor.Family == f {
			out = append(out, e.Descriptor)
		}
	}
	return out
}

// Kinds returns the canonical identifiers in catalog order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Descriptor.Kind)
	}
	return out
}
