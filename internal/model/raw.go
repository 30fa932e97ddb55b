package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is an untyped record as produced by a collector. Accessors treat
// missing keys, nil values and blank strings alike as absent.
type RawRecord map[string]any

// aliases maps canonical keys to the alternative spellings collectors use.
var aliases = map[string][]string{
	"name":             {"name", "Name", "business_name"},
	"source":           {"source", "Source"},
	"source_url":       {"source_url", "sourceUrl", "url_source"},
	"platform":         {"platform", "origin"},
	"email":            {"email", "Email"},
	"phone":            {"phone", "Phone", "telephone", "tel"},
	"website":          {"website", "Website", "site"},
	"address":          {"address", "Address"},
	"location":         {"location", "Location", "city"},
	"business_type":    {"business_type", "businessType"},
	"industry":         {"industry", "Industry"},
	"revenue_estimate": {"revenue_estimate", "revenueEstimate"},
	"verified":         {"verified"},
	"ai_score":         {"ai_score", "aiScore"},
	"quality_score":    {"quality_score", "qualityScore"},
	"auto_integrated":  {"auto_integrated", "autoIntegrated"},
	"social_handles":   {"social_handles", "socialHandles"},
	"pain_points":      {"pain_points", "painPoints"},
	"followers":        {"followers"},
	"engagement_rate":  {"engagement_rate", "engagementRate"},
	"notes":            {"notes", "description"},
	"tags":             {"tags"},
	"created_at":       {"created_at", "createdAt", "scraped_at", "scrapedAt"},
}

// Aliases returns the spellings accepted for a canonical key. Keys without
// aliases are returned as the only spelling.
func Aliases(key string) []string {
	if names, ok := aliases[key]; ok {
		return names
	}
	return []string{key}
}

// lookup returns the first present value for key or one of its aliases.
func (r RawRecord) lookup(key string) (any, bool) {
	for _, n := range Aliases(key) {
		if v, ok := r[n]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

// String returns the value as trimmed text.
func (r RawRecord) String(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		if math.IsNaN(t) {
			return "", false
		}
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		s = t.String()
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Float returns the value as a number. Numeric strings are parsed.
func (r RawRecord) Float(key string) (float64, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

// Int returns the value as an integer, truncating fractional numbers.
func (r RawRecord) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the value as a boolean. Strings "true", "1" and "yes" are true.
func (r RawRecord) Bool(key string) bool {
	v, ok := r.lookup(key)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y":
			return true
		}
	}
	return false
}

// StringMap returns a string-to-string mapping. JSON-encoded objects stored as
// strings are decoded.
func (r RawRecord) StringMap(key string) map[string]string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	switch t := v.(type) {
	case map[string]string:
		for k, val := range t {
			out[k] = val
		}
	case map[string]any:
		for k, val := range t {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
	case string:
		var decoded map[string]string
		if err := json.Unmarshal([]byte(t), &decoded); err != nil {
			return nil
		}
		out = decoded
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// StringSlice returns a list of strings. A plain string is split on commas.
func (r RawRecord) StringSlice(key string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			add(s)
		}
	}
	return out
}
