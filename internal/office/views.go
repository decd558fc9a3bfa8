// Package office declares the data views of the practice: the client and
// prospect tables and the FNA form sections. Field definitions here are the
// single source of truth for which keys exist and what they hold.
package office

import (
	"github.com/canfinancialsolutions/canfs-admin/internal/fna"
	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/grid"
	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

// View couples a table name, its column declarations (for the gateway) and
// its field registry (for the grid).
type View struct {
	Table    string
	PageSize int
	Columns  []gateway.Column
	Registry *grid.Registry

	// DateField is the column date-range filters and exports constrain.
	DateField string
}

func (v View) Gateway(s *gateway.Store) gateway.Gateway {
	return s.Table(v.Table, v.Columns)
}

var ClientStatuses = []string{"active", "prospect", "former"}

// Clients is the main client book view.
func Clients() View {
	defs := []grid.FieldDef{
		{Key: "first_name", Kind: model.KindText, Sortable: true, Searchable: true, Required: true, Sticky: true, Width: 12},
		{Key: "last_name", Kind: model.KindText, Sortable: true, Searchable: true, Required: true, Sticky: true, Width: 12},
		{Key: "email", Kind: model.KindText, Searchable: true, Width: 22},
		{Key: "phone", Kind: model.KindText, Searchable: true, Width: 13},
		{Key: "dob", Label: "DOB", Kind: model.KindDate, Sortable: true, Width: 11},
		{Key: "status", Kind: model.KindSelect, Options: ClientStatuses, Sortable: true, Width: 10},
		{Key: "last_activity", Kind: model.KindDateTime, Sortable: true, SortDefaultDesc: true, Width: 17},
		{Key: "tags", Kind: model.KindList, Width: 18},
		{Key: "notes", Kind: model.KindText, Width: 24},
	}
	// advisor_id is stored and fetched but never displayed.
	cols := append(columnsFor(defs), gateway.Column{Name: "advisor_id", Kind: model.KindNumber})
	return View{
		Table:     "clients",
		PageSize:  20,
		Columns:   cols,
		Registry:  grid.NewRegistry(defs, "advisor_id"),
		DateField: "last_activity",
	}
}

// Prospects is the pipeline view.
func Prospects() View {
	defs := []grid.FieldDef{
		{Key: "name", Kind: model.KindText, Sortable: true, Searchable: true, Required: true, Sticky: true, Width: 18},
		{Key: "source", Kind: model.KindText, Searchable: true, Width: 14},
		{Key: "email", Kind: model.KindText, Searchable: true, Width: 22},
		{Key: "interested", Kind: model.KindBool, Width: 10},
		{Key: "follow_up", Kind: model.KindDateTime, Sortable: true, SortDefaultDesc: true, Width: 17},
		{Key: "status", Kind: model.KindSelect, Options: []string{"new", "contacted", "meeting", "closed"}, Sortable: true, Width: 10},
		{Key: "notes", Kind: model.KindText, Width: 26},
	}
	return View{
		Table:     "prospects",
		PageSize:  10,
		Columns:   columnsFor(defs),
		Registry:  grid.NewRegistry(defs),
		DateField: "follow_up",
	}
}

// FNAHeader is the header entity of the FNA form; one per client.
func FNAHeader() View {
	defs := []grid.FieldDef{
		{Key: "client_id", Kind: model.KindNumber},
		{Key: "reviewed_at", Kind: model.KindDateTime, Sortable: true, SortDefaultDesc: true},
		{Key: "retirement_age", Kind: model.KindNumber},
		{Key: "risk_profile", Kind: model.KindSelect, Options: []string{"conservative", "balanced", "growth"}},
	}
	return View{
		Table:    "fna_profiles",
		PageSize: 1,
		Columns:  columnsFor(defs),
		Registry: grid.NewRegistry(defs, "client_id"),
	}
}

type sectionDef struct {
	name  string
	table string
	defs  []grid.FieldDef
}

func fnaSections() []sectionDef {
	amount := func(key string) grid.FieldDef {
		return grid.FieldDef{Key: key, Kind: model.KindNumber, Required: true, Width: 12}
	}
	desc := grid.FieldDef{Key: "description", Kind: model.KindText, Required: true, Width: 24}
	return []sectionDef{
		{"Incomes", "fna_incomes", []grid.FieldDef{desc, amount("amount"),
			{Key: "frequency", Kind: model.KindSelect, Options: []string{"weekly", "fortnightly", "monthly", "yearly"}, Width: 12}}},
		{"Expenses", "fna_expenses", []grid.FieldDef{desc, amount("amount"),
			{Key: "frequency", Kind: model.KindSelect, Options: []string{"weekly", "fortnightly", "monthly", "yearly"}, Width: 12}}},
		{"Assets", "fna_assets", []grid.FieldDef{desc, amount("value"),
			{Key: "asset_type", Kind: model.KindSelect, Options: []string{"cash", "property", "shares", "super", "other"}, Width: 12}}},
		{"Liabilities", "fna_liabilities", []grid.FieldDef{desc, amount("balance"),
			{Key: "rate", Kind: model.KindNumber, Width: 8}}},
		{"Policies", "fna_policies", []grid.FieldDef{
			{Key: "provider", Kind: model.KindText, Required: true, Width: 16},
			{Key: "policy_type", Kind: model.KindSelect, Options: []string{"life", "tpd", "trauma", "income"}, Width: 10},
			amount("coverage"),
			{Key: "premium", Kind: model.KindNumber, Width: 10}}},
		{"Goals", "fna_goals", []grid.FieldDef{desc,
			{Key: "target_amount", Kind: model.KindNumber, Width: 14},
			{Key: "target_date", Kind: model.KindDate, Width: 11}}},
	}
}

// FNASections builds the child collections of the FNA form, each with its
// own gateway; the fna_id foreign key is hidden from display.
func FNASections(s *gateway.Store) []*fna.Section {
	out := make([]*fna.Section, 0, 6)
	for _, sd := range fnaSections() {
		cols := columnsFor(sd.defs)
		cols = append(cols, gateway.Column{Name: fna.HeaderFK, Kind: model.KindNumber})
		out = append(out, &fna.Section{
			Name:     sd.name,
			Registry: grid.NewRegistry(sd.defs, fna.HeaderFK),
			Gateway:  s.Table(sd.table, cols),
		})
	}
	return out
}

func columnsFor(defs []grid.FieldDef) []gateway.Column {
	cols := make([]gateway.Column, 0, len(defs))
	for _, d := range defs {
		cols = append(cols, gateway.Column{Name: d.Key, Kind: d.Kind})
	}
	return cols
}
