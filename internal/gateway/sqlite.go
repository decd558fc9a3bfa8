package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canfinancialsolutions/canfs-admin/internal/model"

	_ "modernc.org/sqlite"
)

// Column declares one stored column and the value variant it holds. The
// gateway needs this to scan rows into typed values and to bind typed values
// back into SQL parameters.
type Column struct {
	Name string
	Kind model.Kind
}

// Store is the office database handle. One Store is constructed at
// application start and injected into every view; views never open their own
// connections.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The TUI event loop issues one statement at a time, but commits are
	// fire-and-forget and may overlap a fetch.
	db.SetMaxOpenConns(4)
	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA busy_timeout=5000`} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Exec runs DDL/seed statements in order. Used by `canfs-admin init` to lay
// out the office schema; the grid itself never issues raw SQL.
func (s *Store) Exec(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}

// Table returns a Gateway over one table. Columns must cover every field the
// view reads or writes; the durable identifier column ("id") is implicit.
func (s *Store) Table(name string, cols []Column) Gateway {
	return &tableGateway{db: s.db, table: name, cols: cols}
}

type tableGateway struct {
	db    *sql.DB
	table string
	cols  []Column
}

func (g *tableGateway) Columns() []Column { return g.cols }

func (g *tableGateway) selectList() string {
	names := make([]string, 0, len(g.cols)+1)
	names = append(names, "id")
	for _, c := range g.cols {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// whereClause translates the store-expressible part of a Filter into SQL.
// ListContains predicates are deliberately ignored here; they are applied by
// PostFilter over the fetched page.
func (g *tableGateway) whereClause(f Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Search != "" && len(f.SearchFields) > 0 {
		ors := make([]string, 0, len(f.SearchFields))
		needle := "%" + strings.ToLower(f.Search) + "%"
		for _, field := range f.SearchFields {
			ors = append(ors, fmt.Sprintf("lower(coalesce(%s, '')) LIKE ?", field))
			args = append(args, needle)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	for field, want := range f.Equals {
		conds = append(conds, fmt.Sprintf("%s = ?", field))
		args = append(args, want)
	}
	if f.DateField != "" {
		if f.DateFrom != "" {
			conds = append(conds, fmt.Sprintf("%s >= ?", f.DateField))
			args = append(args, f.DateFrom)
		}
		if f.DateTo != "" {
			// Bounds arrive as bare YYYY-MM-DD dates while the column stores
			// full RFC 3339 text, so compare on the date prefix to keep the
			// end day inclusive.
			conds = append(conds, fmt.Sprintf("substr(%s, 1, 10) <= ?", f.DateField))
			args = append(args, f.DateTo)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (g *tableGateway) Count(ctx context.Context, f Filter) (int, error) {
	where, args := g.whereClause(f)
	var n int
	err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+g.table+where, args...).Scan(&n)
	if err != nil {
		return 0, errFetch(g.table, "count", err)
	}
	return n, nil
}

func (g *tableGateway) Fetch(ctx context.Context, f Filter, s Sort, p Page) ([]model.Record, error) {
	where, args := g.whereClause(f)
	q := `SELECT ` + g.selectList() + ` FROM ` + g.table + where
	if s.Key != "" {
		dir := "ASC"
		if s.Dir == Desc {
			dir = "DESC"
		}
		q += fmt.Sprintf(" ORDER BY %s %s, id ASC", s.Key, dir)
	} else {
		q += " ORDER BY id ASC"
	}
	if p.Size > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, p.Size, p.Offset())
	}

	rows, err := g.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errFetch(g.table, "fetch", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		rec, err := g.scanRecord(rows)
		if err != nil {
			return nil, errFetch(g.table, "fetch", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errFetch(g.table, "fetch", err)
	}
	return out, nil
}

func (g *tableGateway) Update(ctx context.Context, id int64, changes model.Fields) (model.Record, error) {
	if len(changes) == 0 {
		return g.fetchOne(ctx, id, "update")
	}
	sets := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, c := range g.cols {
		v, ok := changes[c.Name]
		if !ok {
			continue
		}
		sets = append(sets, c.Name+" = ?")
		args = append(args, bindValue(v, c.Kind))
	}
	if len(sets) == 0 {
		return model.Record{}, errWrite(g.table, "update", fmt.Errorf("no known columns in change set"))
	}
	args = append(args, id)
	res, err := g.db.ExecContext(ctx, `UPDATE `+g.table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return model.Record{}, errWrite(g.table, "update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Record{}, errWrite(g.table, "update", fmt.Errorf("row %d not found", id))
	}
	return g.fetchOne(ctx, id, "update")
}

func (g *tableGateway) Insert(ctx context.Context, fields model.Fields) (model.Record, error) {
	names := make([]string, 0, len(fields))
	marks := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, c := range g.cols {
		v, ok := fields[c.Name]
		if !ok {
			continue
		}
		names = append(names, c.Name)
		marks = append(marks, "?")
		args = append(args, bindValue(v, c.Kind))
	}
	q := `INSERT INTO ` + g.table
	if len(names) == 0 {
		q += ` DEFAULT VALUES`
	} else {
		q += ` (` + strings.Join(names, ", ") + `) VALUES (` + strings.Join(marks, ", ") + `)`
	}
	res, err := g.db.ExecContext(ctx, q, args...)
	if err != nil {
		return model.Record{}, errWrite(g.table, "insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Record{}, errWrite(g.table, "insert", err)
	}
	return g.fetchOne(ctx, id, "insert")
}

func (g *tableGateway) Delete(ctx context.Context, id int64) error {
	res, err := g.db.ExecContext(ctx, `DELETE FROM `+g.table+` WHERE id = ?`, id)
	if err != nil {
		return errWrite(g.table, "delete", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errWrite(g.table, "delete", fmt.Errorf("row %d not found", id))
	}
	return nil
}

func (g *tableGateway) fetchOne(ctx context.Context, id int64, op string) (model.Record, error) {
	row := g.db.QueryRowContext(ctx, `SELECT `+g.selectList()+` FROM `+g.table+` WHERE id = ?`, id)
	rec, err := g.scanRecordRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, errWrite(g.table, op, fmt.Errorf("row %d not found after %s", id, op))
	}
	if err != nil {
		return model.Record{}, errWrite(g.table, op, err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (g *tableGateway) scanRecord(rows *sql.Rows) (model.Record, error) {
	return g.scanRecordRow(rows)
}

func (g *tableGateway) scanRecordRow(s scanner) (model.Record, error) {
	var id int64
	raw := make([]any, len(g.cols))
	dest := make([]any, 0, len(g.cols)+1)
	dest = append(dest, &id)
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	if err := s.Scan(dest...); err != nil {
		return model.Record{}, err
	}
	fields := make(model.Fields, len(g.cols))
	for i, c := range g.cols {
		fields[c.Name] = scanValue(raw[i], c.Kind)
	}
	return model.Record{ID: model.PersistedID(id), Fields: fields}, nil
}

// bindValue converts a typed value into the SQL representation for its
// declared column kind. Timestamps are stored as RFC 3339 UTC text so that
// lexical ordering matches chronological ordering.
func bindValue(v model.Value, kind model.Kind) any {
	if v.IsNull() {
		return nil
	}
	switch kind {
	case model.KindNumber:
		if n, ok := v.AsNumber(); ok {
			return n
		}
	case model.KindBool:
		if b, ok := v.AsBool(); ok {
			if b {
				return int64(1)
			}
			return int64(0)
		}
	case model.KindDate, model.KindTime, model.KindDateTime:
		if t, ok := v.AsTimestamp(); ok {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return v.String()
}

func scanValue(raw any, kind model.Kind) model.Value {
	if raw == nil {
		return model.Null()
	}
	switch kind {
	case model.KindNumber:
		switch n := raw.(type) {
		case int64:
			return model.Number(float64(n))
		case float64:
			return model.Number(n)
		}
	case model.KindBool:
		switch b := raw.(type) {
		case int64:
			return model.Bool(b != 0)
		case bool:
			return model.Bool(b)
		}
	case model.KindDate, model.KindTime, model.KindDateTime:
		if s, ok := textOf(raw); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return model.Timestamp(t)
			}
		}
	}
	if s, ok := textOf(raw); ok {
		return model.Text(s)
	}
	return model.Text(fmt.Sprintf("%v", raw))
}

func textOf(raw any) (string, bool) {
	switch s := raw.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}
