package office

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/canfinancialsolutions/canfs-admin/internal/fna"
	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
)

func initedStore(t *testing.T) *gateway.Store {
	t.Helper()
	s, err := gateway.Open(filepath.Join(t.TempDir(), "office.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := InitSchema(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestInitSchemaIdempotent(t *testing.T) {
	s := initedStore(t)
	// Second run over an existing database is a no-op, not an error.
	if err := InitSchema(context.Background(), s); err != nil {
		t.Fatal(err)
	}
}

func TestSeedDemo(t *testing.T) {
	s := initedStore(t)
	ctx := context.Background()
	if err := SeedDemo(ctx, s); err != nil {
		t.Fatal(err)
	}

	cv := Clients()
	n, err := cv.Gateway(s).Count(ctx, gateway.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("no demo clients seeded")
	}

	// Re-seeding must not duplicate rows.
	if err := SeedDemo(ctx, s); err != nil {
		t.Fatal(err)
	}
	again, err := cv.Gateway(s).Count(ctx, gateway.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if again != n {
		t.Fatalf("re-seed changed client count %d -> %d", n, again)
	}
}

func TestViewsFetchAgainstSchema(t *testing.T) {
	s := initedStore(t)
	ctx := context.Background()
	if err := SeedDemo(ctx, s); err != nil {
		t.Fatal(err)
	}

	for _, v := range []View{Clients(), Prospects(), FNAHeader()} {
		rows, err := v.Gateway(s).Fetch(ctx, gateway.Filter{}, gateway.Sort{}, gateway.Page{Size: 5})
		if err != nil {
			t.Fatalf("%s: %v", v.Table, err)
		}
		_ = rows
	}
}

func TestFNASectionsRoundTrip(t *testing.T) {
	s := initedStore(t)
	ctx := context.Background()
	if err := SeedDemo(ctx, s); err != nil {
		t.Fatal(err)
	}

	// Load a header for the first demo client and exercise each section's
	// gateway against the real schema.
	cv := Clients()
	clients, err := cv.Gateway(s).Fetch(ctx, gateway.Filter{}, gateway.Sort{}, gateway.Page{Size: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) == 0 {
		t.Fatal("no seeded client")
	}
	clientID, _ := clients[0].ID.Remote()

	hv := FNAHeader()
	mgr := fna.NewManager(hv.Gateway(s), clientID, FNASections(s))
	if err := mgr.LoadHeader(ctx); err != nil {
		t.Fatal(err)
	}

	sec := mgr.Sections[0]
	row, err := mgr.AddRow(sec)
	if err != nil {
		t.Fatal(err)
	}
	sec.SetField(row.ID, "description", "salary")
	sec.SetField(row.ID, "amount", "4200")
	saved, err := sec.SaveRow(ctx, row.ID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Pending() {
		t.Fatal("saved row still pending")
	}

	if err := mgr.LoadSection(ctx, sec); err != nil {
		t.Fatal(err)
	}
	if len(sec.Rows) != 1 {
		t.Fatalf("section rows after reload = %d", len(sec.Rows))
	}
	if err := sec.DeleteRow(ctx, sec.Rows[0].ID); err != nil {
		t.Fatal(err)
	}
}
