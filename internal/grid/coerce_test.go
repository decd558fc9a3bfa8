package grid

import (
	"testing"
	"time"

	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

func TestCoerceIn(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		raw  string
		def  FieldDef
		want model.Value
	}{
		{"empty is null", "   ", FieldDef{Kind: model.KindNumber}, model.Null()},
		{"plain number", "42.5", FieldDef{Kind: model.KindNumber}, model.Number(42.5)},
		{"currency number", "$1,250.00", FieldDef{Kind: model.KindNumber}, model.Number(1250)},
		{"bad number is null", "abc", FieldDef{Kind: model.KindNumber}, model.Null()},
		{"bool yes", "Yes", FieldDef{Kind: model.KindBool}, model.Bool(true)},
		{"bool x mark", "x", FieldDef{Kind: model.KindBool}, model.Bool(true)},
		{"bool anything else", "nope", FieldDef{Kind: model.KindBool}, model.Bool(false)},
		{"select case-insensitive", "ACTIVE", FieldDef{Kind: model.KindSelect, Options: []string{"active", "former"}}, model.Text("active")},
		{"select unknown option", "banana", FieldDef{Kind: model.KindSelect, Options: []string{"active"}}, model.Null()},
		{"text verbatim", " spaced out ", FieldDef{Kind: model.KindText}, model.Text("spaced out")},
		{"bad date is null", "not a date", FieldDef{Kind: model.KindDate}, model.Null()},
		{
			"datetime in zone", "2024-03-10T14:30", FieldDef{Kind: model.KindDateTime},
			model.Timestamp(time.Date(2024, 3, 10, 14, 30, 0, 0, chicago)),
		},
		{
			"bare date in zone", "2024-03-10", FieldDef{Kind: model.KindDate},
			model.Timestamp(time.Date(2024, 3, 10, 0, 0, 0, 0, chicago)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceIn(tt.raw, tt.def, chicago)
			if !got.Equal(tt.want) {
				t.Fatalf("CoerceIn(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// A datetime typed in one timezone should store an absolute instant and
// still display the same wall-clock string in that timezone.
func TestDateTimeRoundTrip(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatal(err)
	}
	def := FieldDef{Kind: model.KindDateTime}
	v := CoerceIn("2024-03-10T14:30", def, chicago)

	ts, ok := v.AsTimestamp()
	if !ok {
		t.Fatalf("coerced value is not a timestamp: %v", v)
	}
	if ts.Location() != time.UTC {
		t.Fatalf("stored timestamp not normalized to UTC: %v", ts.Location())
	}
	if got := FormatIn(v, def, chicago); got != "2024-03-10 14:30" {
		t.Fatalf("FormatIn = %q, want local wall clock back", got)
	}
}

func TestFormatIn(t *testing.T) {
	utc := time.UTC
	tests := []struct {
		name string
		v    model.Value
		def  FieldDef
		want string
	}{
		{"null is empty", model.Null(), FieldDef{Kind: model.KindText}, ""},
		{"bool yes", model.Bool(true), FieldDef{Kind: model.KindBool}, "Yes"},
		{"bool no", model.Bool(false), FieldDef{Kind: model.KindBool}, "No"},
		{"number trims zeros", model.Number(1250), FieldDef{Kind: model.KindNumber}, "1250"},
		{"date", model.Timestamp(time.Date(2024, 3, 10, 0, 0, 0, 0, utc)), FieldDef{Kind: model.KindDate}, "2024-03-10"},
		{"time", model.Timestamp(time.Date(2024, 3, 10, 9, 5, 0, 0, utc)), FieldDef{Kind: model.KindTime}, "09:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatIn(tt.v, tt.def, utc); got != tt.want {
				t.Fatalf("FormatIn = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditText(t *testing.T) {
	if got := EditText(model.Bool(true), FieldDef{Kind: model.KindBool}); got != "true" {
		t.Fatalf("EditText(true bool) = %q", got)
	}
	if got := EditText(model.Null(), FieldDef{Kind: model.KindBool}); got != "" {
		t.Fatalf("EditText(null) = %q", got)
	}
}

func TestListItems(t *testing.T) {
	got := ListItems(model.Text("retirement, insurance , , estate"))
	if len(got) != 3 || got[0] != "retirement" || got[1] != "insurance" || got[2] != "estate" {
		t.Fatalf("ListItems = %v", got)
	}
	if items := ListItems(model.Null()); items != nil {
		t.Fatalf("ListItems(null) = %v", items)
	}
}
