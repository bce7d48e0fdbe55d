package conf

import (
	"math"
	"strconv"
	"strings"
)

// sizeMultipliers maps size suffixes to their byte multiplier. Binary
// (1024-based) units, matched case-insensitively, longest suffix first.
var sizeMultipliers = []struct {
	suffix string
	factor float64
}{
	{"tb", 1 << 40},
	{"gb", 1 << 30},
	{"mb", 1 << 20},
	{"kb", 1 << 10},
	{"t", 1 << 40},
	{"g", 1 << 30},
	{"m", 1 << 20},
	{"k", 1 << 10},
	{"b", 1},
}

// durationFactors maps duration suffixes to seconds per unit, longest
// suffix first so "ms" wins over "s" and "ns"/"us" over "s".
var durationFactors = []struct {
	suffix string
	factor float64
}{
	{"ns", 1e-9},
	{"us", 1e-6},
	{"ms", 1e-3},
	{"h", 3600},
	{"m", 60},
	{"s", 1},
}

// ParseSize converts a size literal such as "10K", "2.5mb", or "512" into
// bytes. Suffixes are binary (K=1024, M=1024^2, ...), matched without regard
// to case, with an optional trailing "b". A bare number is bytes. Negative
// mantissas are preserved. Empty, whitespace-only, or non-numeric input
// yields 0 rather than an error; the validator is the layer that rejects
// semantically bad values.
func ParseSize(s string) int64 {
	value, ok := parseUnit(s, sizeMultipliers)
	if !ok {
		return 0
	}
	return int64(value)
}

// ParseDuration converts a duration literal such as "2m", "1.5h", or "30"
// into whole seconds, truncating any sub-second remainder. A bare number is
// seconds. Invalid input yields 0, matching ParseSize.
func ParseDuration(s string) int64 {
	value, ok := parseUnit(s, durationFactors)
	if !ok {
		return 0
	}
	return int64(value)
}

// parseUnit splits a literal into mantissa and suffix and applies the
// matching factor. Returns false for anything that is not a number followed
// by an optional recognized suffix.
func parseUnit(s string, units []struct {
	suffix string
	factor float64
}) (float64, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return 0, false
	}

	factor := 1.0
	for _, u := range units {
		if strings.HasSuffix(trimmed, u.suffix) {
			factor = u.factor
			trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, u.suffix))
			break
		}
	}

	if trimmed == "" {
		return 0, false
	}

	mantissa, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(mantissa) || math.IsInf(mantissa, 0) {
		return 0, false
	}

	return mantissa * factor, true
}
