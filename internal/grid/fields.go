package grid

import (
	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

const (
	defaultColWidth = 14
	minColWidth     = 4
	maxColWidth     = 40
)

// FieldDef declares one column: its semantic kind, the coercion/format rules
// implied by that kind, and its grid behavior. Definitions are immutable and
// declared once per view.
type FieldDef struct {
	Key     string
	Label   string
	Kind    model.Kind
	Options []string // for KindSelect

	Sortable bool
	// SortDefaultDesc makes the first activation of this sort key descending
	// ("most recent first" date columns).
	SortDefaultDesc bool

	// Searchable fields participate in the free-text OR filter.
	Searchable bool

	// Required fields block a save client-side when empty.
	Required bool

	// Sticky pins the column while scrolling horizontally. Only leading
	// columns should be marked sticky.
	Sticky bool

	Width int // initial width; 0 means defaultColWidth
}

// Registry resolves field keys to definitions and owns the display order.
// Pure data; no state beyond construction.
type Registry struct {
	defs   map[string]FieldDef
	order  []string
	hidden map[string]bool
}

// NewRegistry builds a registry from the declared definitions (their order is
// the declared display order) and a set of keys excluded from display
// (internal identifiers, foreign keys).
func NewRegistry(defs []FieldDef, hidden ...string) *Registry {
	r := &Registry{
		defs:   make(map[string]FieldDef, len(defs)),
		order:  make([]string, 0, len(defs)),
		hidden: make(map[string]bool, len(hidden)),
	}
	for _, d := range defs {
		if d.Label == "" {
			d.Label = model.HumanizeKey(d.Key)
		}
		if d.Width == 0 {
			d.Width = defaultColWidth
		}
		r.defs[d.Key] = d
		r.order = append(r.order, d.Key)
	}
	for _, h := range hidden {
		r.hidden[h] = true
	}
	return r
}

// Lookup returns the definition for key, or a default text definition with a
// humanized label when the key was never declared.
func (r *Registry) Lookup(key string) FieldDef {
	if d, ok := r.defs[key]; ok {
		return d
	}
	return FieldDef{
		Key:   key,
		Label: model.HumanizeKey(key),
		Kind:  model.KindText,
		Width: defaultColWidth,
	}
}

// Declared reports whether key was explicitly defined.
func (r *Registry) Declared(key string) bool {
	_, ok := r.defs[key]
	return ok
}

// DisplayOrder returns the columns to render: declared fields in declared
// order, then any fetched-only fields in their natural (fetch) order, minus
// hidden fields.
func (r *Registry) DisplayOrder(fetched []string) []string {
	out := make([]string, 0, len(r.order)+len(fetched))
	seen := make(map[string]bool, len(r.order))
	for _, k := range r.order {
		if r.hidden[k] {
			continue
		}
		out = append(out, k)
		seen[k] = true
	}
	for _, k := range fetched {
		if seen[k] || r.hidden[k] {
			continue
		}
		out = append(out, k)
		seen[k] = true
	}
	return out
}

// SearchFields returns the declared free-text searchable columns.
func (r *Registry) SearchFields() []string {
	var out []string
	for _, k := range r.order {
		if r.defs[k].Searchable {
			out = append(out, k)
		}
	}
	return out
}

// RequiredFields returns the declared required columns.
func (r *Registry) RequiredFields() []string {
	var out []string
	for _, k := range r.order {
		if r.defs[k].Required {
			out = append(out, k)
		}
	}
	return out
}
