package grid

import (
	"strconv"
	"strings"
	"time"

	"github.com/canfinancialsolutions/canfs-admin/internal/model"
)

// Input layouts accepted for date/time cells, tried in order. Values are
// interpreted in the local timezone and stored as absolute timestamps.
var (
	dateTimeLayouts = []string{
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	timeLayouts = []string{"15:04", "15:04:05"}
)

// Coerce converts a raw edited string into the typed value the store should
// receive, per the field's kind. Empty or unparsable input coerces to null;
// coercion never fails.
func Coerce(raw string, def FieldDef) model.Value {
	return CoerceIn(raw, def, time.Local)
}

// CoerceIn is Coerce with an explicit location, so date handling is testable
// without depending on the process timezone.
func CoerceIn(raw string, def FieldDef, loc *time.Location) model.Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Null()
	}
	switch def.Kind {
	case model.KindNumber:
		cleaned := strings.TrimPrefix(raw, "$")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return model.Number(n)
		}
		return model.Null()
	case model.KindBool:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "1", "x":
			return model.Bool(true)
		default:
			return model.Bool(false)
		}
	case model.KindDate, model.KindDateTime:
		for _, layout := range dateTimeLayouts {
			if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
				return model.Timestamp(t)
			}
		}
		return model.Null()
	case model.KindTime:
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
				return model.Timestamp(t)
			}
		}
		return model.Null()
	case model.KindSelect:
		for _, opt := range def.Options {
			if strings.EqualFold(opt, raw) {
				return model.Text(opt)
			}
		}
		return model.Null()
	default:
		return model.Text(raw)
	}
}

// Format renders a stored value for display, per the field's kind.
// Timestamps come back in the local timezone, so a round trip through
// Coerce/Format preserves the local calendar date and time.
func Format(v model.Value, def FieldDef) string {
	return FormatIn(v, def, time.Local)
}

func FormatIn(v model.Value, def FieldDef, loc *time.Location) string {
	if v.IsNull() {
		return ""
	}
	switch def.Kind {
	case model.KindNumber:
		if n, ok := v.AsNumber(); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case model.KindBool:
		// Absent/null renders as the unset state via the IsNull branch above.
		if b, ok := v.AsBool(); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	case model.KindDate:
		if t, ok := v.AsTimestamp(); ok {
			return t.In(loc).Format("2006-01-02")
		}
	case model.KindTime:
		if t, ok := v.AsTimestamp(); ok {
			return t.In(loc).Format("15:04")
		}
	case model.KindDateTime:
		if t, ok := v.AsTimestamp(); ok {
			return t.In(loc).Format("2006-01-02 15:04")
		}
	case model.KindList:
		// Comma-joined summary; the detail popover shows the full items.
		if s, ok := v.AsText(); ok {
			return s
		}
	}
	return v.String()
}

// EditText renders a stored value as the raw string the edit widget starts
// from. Differs from Format only for kinds whose display and input forms
// diverge (booleans edit as true/false).
func EditText(v model.Value, def FieldDef) string {
	if v.IsNull() {
		return ""
	}
	if def.Kind == model.KindBool {
		if b, ok := v.AsBool(); ok && b {
			return "true"
		}
		return "false"
	}
	return Format(v, def)
}

// ListItems splits a list-valued cell into its items for the detail popover.
func ListItems(v model.Value) []string {
	s, ok := v.AsText()
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
