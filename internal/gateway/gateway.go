package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

// Filter is the predicate set the backing store can evaluate server-side:
// a case-insensitive substring search OR-combined over a fixed set of text
// fields, exact/range match on one date field, and exact match on enumerated
// status fields. Anything else (ListContains) is a client-side post-filter
// pass over the fetched page only.
type Filter struct {
	// Search is matched case-insensitively as a substring against each of
	// SearchFields; a row matches if any field matches.
	Search       string
	SearchFields []string

	// Equals are exact matches on enumerated fields (e.g. status).
	Equals map[string]string

	// DateField with From/To bounds (either may be zero for open-ended).
	DateField string
	DateFrom  string
	DateTo    string

	// ListContains cannot be expressed by the store and is applied as a
	// post-filter over the fetched page (see PostFilter).
	ListContains map[string]string
}

// IsZero reports whether the filter constrains nothing server-side.
func (f Filter) IsZero() bool {
	return f.Search == "" && len(f.Equals) == 0 && f.DateField == ""
}

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Sort is the single active sort for a view. A zero Sort means store order.
type Sort struct {
	Key string
	Dir SortDirection
}

// Page is a window into the filtered, sorted result set. Size is fixed per
// view; the total row count is fetched separately via Count.
type Page struct {
	Index int
	Size  int
}

func (p Page) Offset() int {
	if p.Index < 0 {
		return 0
	}
	return p.Index * p.Size
}

// Gateway is the narrow interface the grid reads and writes rows through.
// One Gateway instance serves one table. Every call is a suspension point;
// implementations must honor ctx cancellation.
type Gateway interface {
	// Columns reports the declared column list in fetch order.
	Columns() []Column
	Count(ctx context.Context, f Filter) (int, error)
	Fetch(ctx context.Context, f Filter, s Sort, p Page) ([]model.Record, error)
	// Update writes a partial set of fields for one row and returns the row
	// as the store now holds it.
	Update(ctx context.Context, id int64, changes model.Fields) (model.Record, error)
	// Insert creates a row (identifier omitted; the store issues one) and
	// returns the inserted row.
	Insert(ctx context.Context, fields model.Fields) (model.Record, error)
	Delete(ctx context.Context, id int64) error
}

// PostFilter applies the predicates the store cannot express to an already
// fetched page. Known limitation: it only sees rows within the page, so a
// matching row on another page is not surfaced.
func PostFilter(rows []model.Record, f Filter) []model.Record {
	if len(f.ListContains) == 0 {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if matchesListContains(r, f.ListContains) {
			out = append(out, r)
		}
	}
	return out
}

func matchesListContains(r model.Record, pred map[string]string) bool {
	for key, needle := range pred {
		s, _ := r.Get(key).AsText()
		if !containsFold(s, needle) {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// FetchError wraps a failed read (fetch/count). The view keeps its last
// successfully fetched rows visible and surfaces the message as a banner.
type FetchError struct {
	Table string
	Op    string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Table, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RemoteWriteError wraps a failed update/insert/delete.
type RemoteWriteError struct {
	Table string
	Op    string
	Err   error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("write %s (%s): %v", e.Table, e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// ValidationError is raised client-side before a write reaches the store
// (required-field checks). It never represents a remote failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func errFetch(table, op string, err error) error {
	return &FetchError{Table: table, Op: op, Err: err}
}

func errWrite(table, op string, err error) error {
	return &RemoteWriteError{Table: table, Op: op, Err: err}
}
