package grid

import (
	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

type draftKey struct {
	row   string
	field string
}

type draftEntry struct {
	raw string
	seq uint64
}

// Buffer stages edited-but-uncommitted cell values, keyed by (row, field).
// An entry is created on the first keystroke in a cell and removed only when
// its commit resolves. While present it is the single source of truth for
// the cell's displayed value; a re-fetch never clobbers it.
//
// Each staging bumps a sequence number. A commit captures the sequence it was
// issued for, and resolution only clears the entry if no newer edit has been
// staged since — overlapping commits to the same cell are last-write-wins,
// but a commit result can never discard a newer draft.
type Buffer struct {
	entries map[draftKey]draftEntry
	seq     uint64
}

func NewBuffer() *Buffer {
	return &Buffer{entries: make(map[draftKey]draftEntry)}
}

// Stage records or overwrites the pending edit for a cell and returns the
// sequence number identifying this edit. No network effect.
func (b *Buffer) Stage(row model.RowID, field, raw string) uint64 {
	b.seq++
	b.entries[draftKey{row: row.Key(), field: field}] = draftEntry{raw: raw, seq: b.seq}
	return b.seq
}

// Get returns the staged raw value for a cell, if any.
func (b *Buffer) Get(row model.RowID, field string) (string, bool) {
	e, ok := b.entries[draftKey{row: row.Key(), field: field}]
	return e.raw, ok
}

// Seq returns the sequence of the live entry for a cell, or 0.
func (b *Buffer) Seq(row model.RowID, field string) uint64 {
	return b.entries[draftKey{row: row.Key(), field: field}].seq
}

// Resolve returns the effective display value for a cell: the draft if one
// is live, else the formatted fetched value.
func (b *Buffer) Resolve(row model.RowID, field string, fetched model.Value, def FieldDef) string {
	if raw, ok := b.Get(row, field); ok {
		return raw
	}
	return Format(fetched, def)
}

// Settle removes the entry for a cell if it still corresponds to seq.
// Called when the commit issued for seq resolves (success or failure); if the
// user staged a newer edit meanwhile, that edit survives and will be written
// on its own blur.
func (b *Buffer) Settle(row model.RowID, field string, seq uint64) bool {
	k := draftKey{row: row.Key(), field: field}
	e, ok := b.entries[k]
	if !ok || e.seq != seq {
		return false
	}
	delete(b.entries, k)
	return true
}

// Discard drops an entry without committing (explicit cancel).
func (b *Buffer) Discard(row model.RowID, field string) {
	delete(b.entries, draftKey{row: row.Key(), field: field})
}

// Len is the number of live draft entries.
func (b *Buffer) Len() int { return len(b.entries) }
