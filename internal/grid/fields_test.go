package grid

import (
	"reflect"
	"testing"

	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

func testRegistry() *Registry {
	return NewRegistry([]FieldDef{
		{Key: "first_name", Kind: model.KindText, Searchable: true, Required: true, Sticky: true},
		{Key: "last_name", Kind: model.KindText, Searchable: true, Sticky: true},
		{Key: "balance", Kind: model.KindNumber, Sortable: true},
		{Key: "last_activity", Kind: model.KindDateTime, Sortable: true, SortDefaultDesc: true},
		{Key: "status", Kind: model.KindSelect, Options: []string{"active", "former"}, Sortable: true},
	}, "client_id")
}

func TestRegistry_LookupDeclared(t *testing.T) {
	r := testRegistry()
	def := r.Lookup("balance")
	if def.Kind != model.KindNumber {
		t.Fatalf("kind = %q, want number", def.Kind)
	}
	if def.Label != "Balance" {
		t.Fatalf("label = %q, want auto-derived %q", def.Label, "Balance")
	}
}

func TestRegistry_LookupUnknownFallsBackToText(t *testing.T) {
	r := testRegistry()
	def := r.Lookup("referral_source")
	if def.Kind != model.KindText {
		t.Fatalf("kind = %q, want text default", def.Kind)
	}
	if def.Label != "Referral Source" {
		t.Fatalf("label = %q", def.Label)
	}
	if def.Width == 0 {
		t.Fatalf("default def has zero width")
	}
}

func TestRegistry_DisplayOrder(t *testing.T) {
	r := testRegistry()
	// Fetched-only fields are appended in fetch order; hidden keys are
	// excluded even when fetched.
	got := r.DisplayOrder([]string{"client_id", "extra", "first_name"})
	want := []string{"first_name", "last_name", "balance", "last_activity", "status", "extra"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DisplayOrder = %v, want %v", got, want)
	}
}

func TestRegistry_SearchAndRequiredFields(t *testing.T) {
	r := testRegistry()
	if got := r.SearchFields(); !reflect.DeepEqual(got, []string{"first_name", "last_name"}) {
		t.Fatalf("SearchFields = %v", got)
	}
	if got := r.RequiredFields(); !reflect.DeepEqual(got, []string{"first_name"}) {
		t.Fatalf("RequiredFields = %v", got)
	}
}
