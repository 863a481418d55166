// Package util converts the loosely typed values found in OSM responses.
// OSM sends numbers as strings or numbers, booleans as "1", "true", "yes"
// or real booleans, and blank dates as "" or "0000-00-00".
package util

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// ToInt returns 0 for anything that is not a whole number.
func ToInt(v any) int {
	i, _ := ToIntOK(v)
	return i
}

// ToIntOK is ToInt which also reports whether v held a number.
func ToIntOK(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), t == math.Trunc(t)
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func ToFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

func ToBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "y", "on":
			return true
		}
	}
	return false
}

// ToDate parses OSM's dates. The zero time is returned for blank values.
func ToDate(v any) time.Time {
	s := strings.TrimSpace(ToString(v))
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}
	}
	for _, layout := range []string{DateLayout, DateTimeLayout, "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == DateTimeLayout || layout == time.RFC3339 {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t
		}
	}
	return time.Time{}
}

// ToDateTime parses "YYYY-MM-DD HH:MM:SS", falling back to a date.
func ToDateTime(v any) time.Time {
	s := strings.TrimSpace(ToString(v))
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		return t
	}
	return ToDate(s)
}

// ToClock keeps "HH:MM" or "HH:MM:SS" as "HH:MM". Anything else is blank.
func ToClock(v any) string {
	s := strings.TrimSpace(ToString(v))
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// FormatDate is the inverse of ToDate; zero dates become "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// Slice also accepts an object, returning its values. OSM turns arrays
// into objects keyed by index when PHP's array is sparse.
func Slice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		out := make([]any, 0, len(t))
		for _, k := range SortedKeys(t) {
			out = append(out, t[k])
		}
		return out
	}
	return nil
}

// Maps is Slice narrowed to the object elements.
func Maps(v any) []map[string]any {
	items := Slice(v)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// SortedKeys orders numeric keys numerically and the rest lexically after them.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, aerr := strconv.Atoi(keys[i])
		bi, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return ai < bi
		case aerr == nil:
			return true
		case berr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// DecodeJSONString decodes JSON nested in a string field (OSM's "config" fields).
func DecodeJSONString(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
