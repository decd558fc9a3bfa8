package grid

import (
	"testing"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
)

func TestController_ToggleSortCycle(t *testing.T) {
	c := NewController(testRegistry(), 20)

	if s := c.Sort(); s.Key != "" {
		t.Fatalf("fresh controller has active sort %v", s)
	}

	c.ToggleSort("balance")
	if s := c.Sort(); s.Key != "balance" || s.Dir != gateway.Asc {
		t.Fatalf("first toggle = %v, want balance asc", s)
	}
	c.ToggleSort("balance")
	if s := c.Sort(); s.Dir != gateway.Desc {
		t.Fatalf("second toggle = %v, want desc", s)
	}
	c.ToggleSort("balance")
	if s := c.Sort(); s.Dir != gateway.Asc {
		t.Fatalf("third toggle = %v, want asc again", s)
	}
}

func TestController_ToggleSortSwitchesColumn(t *testing.T) {
	c := NewController(testRegistry(), 20)
	c.ToggleSort("balance")
	c.ToggleSort("last_activity")
	if s := c.Sort(); s.Key != "last_activity" || s.Dir != gateway.Desc {
		t.Fatalf("sort = %v, want last_activity at its declared default desc", s)
	}
}

func TestController_ToggleSortIgnoresUnsortable(t *testing.T) {
	c := NewController(testRegistry(), 20)
	c.ToggleSort("first_name")
	if s := c.Sort(); s.Key != "" {
		t.Fatalf("unsortable column activated sort %v", s)
	}
}

func TestController_SearchResetsPage(t *testing.T) {
	c := NewController(testRegistry(), 10)
	c.SetPageIndex(3)
	c.SetSearch("smith")
	if c.Page().Index != 0 {
		t.Fatalf("page index = %d after search change", c.Page().Index)
	}
	// Setting the same query again is a no-op and must not rewind paging.
	c.SetPageIndex(2)
	c.SetSearch("smith")
	if c.Page().Index != 2 {
		t.Fatalf("page index rewound on unchanged search")
	}
}

func TestController_FilterAssembly(t *testing.T) {
	c := NewController(testRegistry(), 10)
	c.SetSearch("jo")
	c.SetEquals("status", "active")
	c.SetDateRange("last_activity", "2024-01-01", "2024-03-31")

	f := c.Filter()
	if f.Search != "jo" {
		t.Fatalf("Search = %q", f.Search)
	}
	if len(f.SearchFields) != 2 {
		t.Fatalf("SearchFields = %v, want the registry's searchable keys", f.SearchFields)
	}
	if f.Equals["status"] != "active" {
		t.Fatalf("Equals = %v", f.Equals)
	}
	if f.DateField != "last_activity" || f.DateFrom != "2024-01-01" || f.DateTo != "2024-03-31" {
		t.Fatalf("date range = %q %q %q", f.DateField, f.DateFrom, f.DateTo)
	}

	c.SetEquals("status", "")
	if _, ok := c.Filter().Equals["status"]; ok {
		t.Fatal("empty value did not clear the equals predicate")
	}
}

func TestController_Paging(t *testing.T) {
	c := NewController(testRegistry(), 10)
	if got := c.PageCount(0); got != 1 {
		t.Fatalf("PageCount(0) = %d", got)
	}
	if got := c.PageCount(25); got != 3 {
		t.Fatalf("PageCount(25) = %d", got)
	}

	c.NextPage(25)
	c.NextPage(25)
	if c.Page().Index != 2 {
		t.Fatalf("page index = %d", c.Page().Index)
	}
	// Last page: no further advance.
	c.NextPage(25)
	if c.Page().Index != 2 {
		t.Fatalf("advanced past the last page to %d", c.Page().Index)
	}
	if c.Page().Offset() != 20 {
		t.Fatalf("Offset = %d", c.Page().Offset())
	}

	c.PrevPage()
	c.PrevPage()
	c.PrevPage()
	if c.Page().Index != 0 {
		t.Fatalf("page index went negative: %d", c.Page().Index)
	}
}

// An older fetch resolving after a newer one must be discarded, never
// overwriting the newer rows.
func TestController_StaleFetchDiscarded(t *testing.T) {
	c := NewController(testRegistry(), 10)

	first := c.NextFetch()
	second := c.NextFetch()

	if !c.Apply(second) {
		t.Fatal("newest response rejected")
	}
	if c.Apply(first) {
		t.Fatal("stale response applied after a newer one")
	}
	if c.Apply(second) {
		t.Fatal("duplicate response applied twice")
	}
}

func TestController_SearchGenerations(t *testing.T) {
	c := NewController(testRegistry(), 10)
	g1 := c.NextSearchGen()
	g2 := c.NextSearchGen()
	if g1 == g2 {
		t.Fatal("generations did not advance")
	}
	if c.SearchGen() != g2 {
		t.Fatalf("SearchGen = %d, want latest %d", c.SearchGen(), g2)
	}
}
