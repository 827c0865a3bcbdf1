package extraction

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Each coerce helper returns the value to use and whether a fallback replaced
// the input. A missing optional field is not a fallback.

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)`)

func coerceString(v any, fallback string) (string, bool) {
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s, false
		}
	}
	return fallback, true
}

func coerceOptionalString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", true
	}
	return strings.TrimSpace(s), false
}

// parseNumber accepts JSON numbers and strings that start with a number ("20", "20 min").
func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case string:
		m := leadingNumber.FindStringSubmatch(n)
		if m == nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// coerceMinInt returns v rounded to an int when it is at least min.
func coerceMinInt(v any, min, fallback int) (int, bool) {
	f, ok := parseNumber(v)
	if !ok {
		return fallback, true
	}
	n := int(math.Round(f))
	if n < min {
		return fallback, true
	}
	return n, false
}

// coerceOptionalInt returns nil for a missing or invalid value.
func coerceOptionalInt(v any, min int) (*int, bool) {
	if v == nil {
		return nil, false
	}
	f, ok := parseNumber(v)
	if !ok {
		return nil, true
	}
	n := int(math.Round(f))
	if n < min {
		return nil, true
	}
	return &n, false
}

func coerceAmount(v any) (string, bool) {
	switch a := v.(type) {
	case string:
		if a = strings.TrimSpace(a); a != "" {
			return a, false
		}
	case float64:
		return strconv.FormatFloat(a, 'f', -1, 64), false
	}
	return DefaultAmount, true
}

// coerceHTTPURL accepts absolute http(s) URLs only.
func coerceHTTPURL(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", true
	}
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", true
	}
	return s, false
}

// coerceOptionalURL is coerceHTTPURL where an absent or blank value is not a fallback.
func coerceOptionalURL(v any) (string, bool) {
	if s, ok := v.(string); v == nil || (ok && strings.TrimSpace(s) == "") {
		return "", false
	}
	return coerceHTTPURL(v)
}

// coerceImageOrder clamps to 1..MaxImages; a non-numeric order becomes 1.
// A missing order is not a fallback, the position decides.
func coerceImageOrder(v any) (int, bool) {
	if v == nil {
		return 1, false
	}
	f, ok := parseNumber(v)
	if !ok {
		return 1, true
	}
	n := int(math.Round(f))
	switch {
	case n < 1:
		return 1, true
	case n > MaxImages:
		return MaxImages, true
	}
	return n, false
}

var difficultyAliases = map[string]string{
	"facil":      DifficultyEasy,
	"fácil":      DifficultyEasy,
	"easy":       DifficultyEasy,
	"medio":      DifficultyMedium,
	"media":      DifficultyMedium,
	"medium":     DifficultyMedium,
	"intermedio": DifficultyMedium,
	"dificil":    DifficultyHard,
	"difícil":    DifficultyHard,
	"hard":       DifficultyHard,
}

func coerceDifficulty(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return DefaultDifficulty, true
	}
	switch s {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return s, false
	}
	if d, ok := difficultyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, false
	}
	return DefaultDifficulty, true
}

func coerceTags(v any) ([]string, bool) {
	tags := []string{}
	if v == nil {
		return tags, false
	}
	items, ok := v.([]any)
	if !ok {
		return tags, true
	}
	dropped := false
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			dropped = true
			continue
		}
		tags = append(tags, strings.TrimSpace(s))
	}
	return tags, dropped
}

// isTruthy follows JSON-ish truthiness for the model's error flag.
func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && !strings.EqualFold(t, "false")
	}
	return true
}
