// Package export serializes the currently fetched page of rows to a
// spreadsheet file. One-shot transformation; no state.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/canfinancialsolutions/canfs-admin/internal/grid"
	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

// Write serializes rows as CSV in the registry's display order. Cell values
// use the same display formatting as the grid, minus any draft layering:
// exports are of fetched data only.
func Write(w io.Writer, reg *grid.Registry, columns []string, rows []model.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(columns))
	for _, key := range columns {
		header = append(header, reg.Lookup(key).Label)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	line := make([]string, len(columns))
	for _, row := range rows {
		for i, key := range columns {
			line[i] = grid.Format(row.Get(key), reg.Lookup(key))
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName builds the export file name from the view name and the active
// date range, when one is set.
func FileName(view, from, to string) string {
	name := strings.ToLower(strings.ReplaceAll(view, " ", "_"))
	switch {
	case from != "" && to != "":
		return fmt.Sprintf("%s_%s_%s.csv", name, from, to)
	case from != "":
		return fmt.Sprintf("%s_from_%s.csv", name, from)
	case to != "":
		return fmt.Sprintf("%s_to_%s.csv", name, to)
	}
	return name + ".csv"
}

// ToFile writes the export into dir and returns the full path.
func ToFile(dir string, reg *grid.Registry, columns []string, rows []model.Record, view, from, to string) (string, error) {
	path := filepath.Join(dir, FileName(view, from, to))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(f, reg, columns, rows); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}
