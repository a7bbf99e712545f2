package clean

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when a posted date arrives as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// canonicalID renders an identifier so that 7, 7.0 and " 7 " compare equal.
// It reports false for missing or blank values.
func canonicalID(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = strings.TrimSpace(x)
		if f, err := strconv.ParseFloat(s, 64); err == nil && isIntegral(f) && strings.ContainsAny(s, ".eE") {
			s = strconv.FormatInt(int64(f), 10)
		}
	case int64:
		s = strconv.FormatInt(x, 10)
	case int:
		s = strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		if isIntegral(x) {
			s = strconv.FormatInt(int64(x), 10)
		} else {
			s = strconv.FormatFloat(x, 'f', -1, 64)
		}
	default:
		s = strings.TrimSpace(text(x))
	}
	return s, s != ""
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f) && math.Abs(f) < 1<<53
}

// text renders a value as a string; missing values become "".
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case []byte:
		return string(x)
	default:
		return ""
	}
}

func trimmed(v any) string {
	return strings.TrimSpace(text(v))
}

// number parses a nullable numeric value. Blank or unparseable text is
// treated as missing.
func number(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// timestamp parses a posted date. Missing or unparseable values yield the
// zero time.
func timestamp(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
