package query

import (
	"fmt"
	"strconv"
	"time"

	"github.com/blackwell-systems/jobskills/internal/store"
)

// Stored values arrive as int64, float64, string or nil. Cached rows may
// carry whole floats as int64, so numeric decoders accept either.

func asInt(row store.Row, col string) int {
	switch v := row[col].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func asFloat(row store.Row, col string) float64 {
	switch v := row[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

func asFloatPtr(row store.Row, col string) *float64 {
	if row[col] == nil {
		return nil
	}
	f := asFloat(row, col)
	return &f
}

func asString(row store.Row, col string) string {
	switch v := row[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// postedDay parses a stored posted date and truncates it to the day.
func postedDay(row store.Row, col string) (time.Time, bool) {
	if t, ok := row[col].(time.Time); ok {
		return truncateDay(t), true
	}
	s := asString(row, col)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
