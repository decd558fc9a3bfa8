package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the semantic type of a field. It drives both the widget rendered
// for a cell and the coercion applied to raw input before a write.
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindDateTime Kind = "datetime"
	KindBool     Kind = "bool"
	KindSelect   Kind = "select"
	// KindList marks a multi-value column (comma-joined). List cells render
	// read-only as a summary; they are never edited inline.
	KindList Kind = "list"
)

type valueKind int

const (
	valueNull valueKind = iota
	valueText
	valueNumber
	valueBool
	valueTimestamp
)

// Value is the closed variant a record field can hold: text, number, bool,
// an absolute timestamp, or null. Timestamps are always stored in UTC; any
// local-timezone handling belongs to display formatting, not to the value.
type Value struct {
	kind valueKind
	s    string
	n    float64
	b    bool
	t    time.Time
}

func Null() Value                 { return Value{} }
func Text(s string) Value         { return Value{kind: valueText, s: s} }
func Number(n float64) Value      { return Value{kind: valueNumber, n: n} }
func Bool(b bool) Value           { return Value{kind: valueBool, b: b} }
func Timestamp(t time.Time) Value { return Value{kind: valueTimestamp, t: t.UTC()} }

func (v Value) IsNull() bool { return v.kind == valueNull }

func (v Value) AsText() (string, bool)         { return v.s, v.kind == valueText }
func (v Value) AsNumber() (float64, bool)      { return v.n, v.kind == valueNumber }
func (v Value) AsBool() (bool, bool)           { return v.b, v.kind == valueBool }
func (v Value) AsTimestamp() (time.Time, bool) { return v.t, v.kind == valueTimestamp }

// Equal reports whether two values hold the same variant and payload.
// Timestamps compare as instants.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case valueText:
		return v.s == o.s
	case valueNumber:
		return v.n == o.n
	case valueBool:
		return v.b == o.b
	case valueTimestamp:
		return v.t.Equal(o.t)
	}
	return true
}

// String renders a storage-facing representation (UTC for timestamps).
// Display formatting lives in the grid package.
func (v Value) String() string {
	switch v.kind {
	case valueText:
		return v.s
	case valueNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case valueBool:
		if v.b {
			return "true"
		}
		return "false"
	case valueTimestamp:
		return v.t.UTC().Format(time.RFC3339)
	}
	return ""
}

// RowID identifies a row as either persisted (store-issued integer id) or
// pending (locally generated token for a row that has not been inserted yet).
// The pending token is never sent to the store; insert-vs-update branches on
// the variant rather than on a string convention.
type RowID struct {
	persisted bool
	id        int64
	token     string
}

func PersistedID(id int64) RowID { return RowID{persisted: true, id: id} }

func PendingID() RowID { return RowID{token: uuid.NewString()} }

func (r RowID) IsPending() bool { return !r.persisted }

// Remote returns the store-issued identifier, or false for a pending row.
func (r RowID) Remote() (int64, bool) {
	if !r.persisted {
		return 0, false
	}
	return r.id, true
}

// Key is a stable map key for the row within one view. Persisted and pending
// rows cannot collide: tokens are UUIDs, not decimal integers.
func (r RowID) Key() string {
	if r.persisted {
		return strconv.FormatInt(r.id, 10)
	}
	return r.token
}

func (r RowID) String() string {
	if r.persisted {
		return fmt.Sprintf("row-%d", r.id)
	}
	return "pending-" + r.token
}

// Fields is the open field-name → value mapping carried by every row.
type Fields map[string]Value

// Clone returns a shallow copy (values are immutable, so shallow is enough).
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Record is one fetched row: a durable identifier plus its field values.
// Records are superseded wholesale on every fetch; nothing mutates a Record
// except folding in a server-returned row after a successful write.
type Record struct {
	ID     RowID
	Fields Fields
}

// Get returns the value for key, or null when the key is absent.
func (r Record) Get(key string) Value {
	if r.Fields == nil {
		return Null()
	}
	return r.Fields[key]
}

// HumanizeKey derives a display label from a snake_case field key:
// de-snake, title-case, with an exception list for abbreviations that should
// render fully upper-case.
func HumanizeKey(key string) string {
	parts := strings.Split(strings.TrimSpace(key), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if up, ok := labelAcronyms[strings.ToLower(p)]; ok {
			parts[i] = up
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

var labelAcronyms = map[string]string{
	"id":  "ID",
	"ssn": "SSN",
	"dob": "DOB",
	"fna": "FNA",
	"url": "URL",
}
