// Package fna manages the financial-needs-analysis form: one header record
// owning several child row collections (incomes, expenses, assets,
// liabilities, policies, goals), each row independently insertable,
// updatable, and deletable.
package fna

import (
	"context"
	"strconv"
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/gateway"
	"github.com/canfinancialsolutions/canfs-admin/internal/grid"
	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

// HeaderFK is the foreign-key column every child row carries back to its
// owning header.
const HeaderFK = "fna_id"

// ChildRow is one row of a child collection. A pending row exists only
// locally: its RowID carries a placeholder token that is never sent to the
// store; a successful insert replaces the whole row with the server-returned
// one (real identifier, coerced types).
type ChildRow struct {
	ID       model.RowID
	HeaderID int64
	Fields   model.Fields
}

func (r ChildRow) Pending() bool { return r.ID.IsPending() }

// Section is one named child collection with its own field registry and
// gateway. Rows are owned by the event loop: gateway round trips run off it,
// but Rows is only read and mutated between events.
type Section struct {
	Name     string
	Registry *grid.Registry
	Gateway  gateway.Gateway

	Rows []ChildRow
}

// Manager composes the header entity and its child sections for one owning
// client. The gateway handle is injected at construction; the manager never
// reaches for shared globals.
type Manager struct {
	headerGW gateway.Gateway
	clientID int64

	Header   model.Record
	Sections []*Section
}

func NewManager(headerGW gateway.Gateway, clientID int64, sections []*Section) *Manager {
	return &Manager{headerGW: headerGW, clientID: clientID, Sections: sections}
}

func (m *Manager) ClientID() int64 { return m.clientID }

// FetchOrCreateHeader returns the header row for the owning client,
// inserting an empty one if none exists yet (get-or-create). Racing inserts
// are out of scope under single-user use. Pure gateway round trip; the
// caller assigns the result to Header.
func (m *Manager) FetchOrCreateHeader(ctx context.Context) (model.Record, error) {
	rows, err := m.headerGW.Fetch(ctx,
		gateway.Filter{Equals: map[string]string{"client_id": strconv.FormatInt(m.clientID, 10)}},
		gateway.Sort{}, gateway.Page{Size: 1})
	if err != nil {
		return model.Record{}, err
	}
	if len(rows) > 0 {
		return rows[0], nil
	}
	return m.headerGW.Insert(ctx, model.Fields{"client_id": model.Number(float64(m.clientID))})
}

// LoadHeader is the synchronous form used by scripted callers and tests.
func (m *Manager) LoadHeader(ctx context.Context) error {
	rec, err := m.FetchOrCreateHeader(ctx)
	if err != nil {
		return err
	}
	m.Header = rec
	return nil
}

// HeaderID returns the durable header identifier. Valid only after the
// header was loaded.
func (m *Manager) HeaderID() (int64, bool) {
	return m.Header.ID.Remote()
}

// FetchSection reads one child collection scoped to headerID. Sections are
// independent, so callers may run the fetches in parallel (the TUI batches
// one command per section).
func FetchSection(ctx context.Context, gw gateway.Gateway, headerID int64) ([]ChildRow, error) {
	rows, err := gw.Fetch(ctx,
		gateway.Filter{Equals: map[string]string{HeaderFK: strconv.FormatInt(headerID, 10)}},
		gateway.Sort{}, gateway.Page{})
	if err != nil {
		return nil, err
	}
	out := make([]ChildRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ChildRow{ID: r.ID, HeaderID: headerID, Fields: r.Fields})
	}
	return out, nil
}

// LoadSection is the synchronous form of FetchSection.
func (m *Manager) LoadSection(ctx context.Context, s *Section) error {
	headerID, ok := m.HeaderID()
	if !ok {
		return &gateway.ValidationError{Field: HeaderFK, Reason: "header not loaded"}
	}
	rows, err := FetchSection(ctx, s.Gateway, headerID)
	if err != nil {
		return err
	}
	s.Rows = rows
	return nil
}

// AddRow appends a pending row with a locally generated placeholder
// identifier and the current header id. It appears immediately with empty
// fields and is persisted only by an explicit save.
func (m *Manager) AddRow(s *Section) (ChildRow, error) {
	headerID, ok := m.HeaderID()
	if !ok {
		return ChildRow{}, &gateway.ValidationError{Field: HeaderFK, Reason: "header not loaded"}
	}
	row := ChildRow{
		ID:       model.PendingID(),
		HeaderID: headerID,
		Fields:   model.Fields{},
	}
	s.Rows = append(s.Rows, row)
	return row, nil
}

// SetField stages an edited raw value into the in-memory row, coerced per
// the section's field definition. Unlike grid cell commits, nothing is
// written until the row is saved; a failed save keeps this state so the user
// can retry.
func (s *Section) SetField(row model.RowID, key, raw string) {
	i, ok := s.find(row)
	if !ok {
		return
	}
	if s.Rows[i].Fields == nil {
		s.Rows[i].Fields = model.Fields{}
	}
	s.Rows[i].Fields[key] = grid.Coerce(raw, s.Registry.Lookup(key))
}

func (s *Section) find(row model.RowID) (int, bool) {
	for i := range s.Rows {
		if s.Rows[i].ID.Key() == row.Key() {
			return i, true
		}
	}
	return 0, false
}

// Row returns the current in-memory state of a row.
func (s *Section) Row(id model.RowID) (ChildRow, bool) {
	i, ok := s.find(id)
	if !ok {
		return ChildRow{}, false
	}
	return s.Rows[i], true
}

// ValidateRow runs the client-side required-field checks. A failure blocks
// the save before it reaches the gateway.
func (s *Section) ValidateRow(id model.RowID) error {
	row, ok := s.Row(id)
	if !ok {
		return &gateway.ValidationError{Field: "row", Reason: "row not found"}
	}
	for _, req := range s.Registry.RequiredFields() {
		v := row.Fields[req]
		if v.IsNull() || isBlankText(v) {
			return &gateway.ValidationError{Field: req, Reason: "required"}
		}
	}
	return nil
}

// Persist writes one child row: insert for a pending row (placeholder id
// omitted so the store assigns one), update for a persisted row. Pure
// gateway round trip; pair with ReplaceRow on success.
func Persist(ctx context.Context, gw gateway.Gateway, row ChildRow) (ChildRow, error) {
	fields := row.Fields.Clone()
	if fields == nil {
		fields = model.Fields{}
	}
	fields[HeaderFK] = model.Number(float64(row.HeaderID))

	var rec model.Record
	var err error
	if remoteID, persisted := row.ID.Remote(); persisted {
		rec, err = gw.Update(ctx, remoteID, fields)
	} else {
		rec, err = gw.Insert(ctx, fields)
	}
	if err != nil {
		return ChildRow{}, err
	}
	return ChildRow{ID: rec.ID, HeaderID: row.HeaderID, Fields: rec.Fields}, nil
}

// ReplaceRow swaps the in-memory row (matched by its old identifier, which
// for a fresh insert is the placeholder) with the server-returned one.
func (s *Section) ReplaceRow(old model.RowID, saved ChildRow) {
	if i, ok := s.find(old); ok {
		s.Rows[i] = saved
	}
}

// RemoveLocal drops a row from local state (after a successful remote
// delete, or immediately for a pending row).
func (s *Section) RemoveLocal(id model.RowID) {
	if i, ok := s.find(id); ok {
		s.Rows = append(s.Rows[:i], s.Rows[i+1:]...)
	}
}

// SaveRow is the synchronous validate+persist+replace sequence. On success
// the in-memory row is replaced by the server-returned row and stops being
// pending. On failure the edited state stays in place for retry.
func (s *Section) SaveRow(ctx context.Context, id model.RowID) (ChildRow, error) {
	if err := s.ValidateRow(id); err != nil {
		return ChildRow{}, err
	}
	row, _ := s.Row(id)
	saved, err := Persist(ctx, s.Gateway, row)
	if err != nil {
		return ChildRow{}, err
	}
	s.ReplaceRow(id, saved)
	return saved, nil
}

// DeleteRow removes a row. A still-pending row has nothing remote to delete
// and is dropped locally with zero gateway calls; a persisted row is removed
// from local state only after the remote delete succeeds.
func (s *Section) DeleteRow(ctx context.Context, id model.RowID) error {
	i, ok := s.find(id)
	if !ok {
		return nil
	}
	if remoteID, persisted := s.Rows[i].ID.Remote(); persisted {
		if err := s.Gateway.Delete(ctx, remoteID); err != nil {
			return err
		}
	}
	s.RemoveLocal(id)
	return nil
}

func isBlankText(v model.Value) bool {
	s, ok := v.AsText()
	return ok && strings.TrimSpace(s) == ""
}
