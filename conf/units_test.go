package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"bare number is bytes", "512", 512},
		{"kilobytes", "10K", 10 * 1024},
		{"kilobytes with b suffix", "10kb", 10 * 1024},
		{"megabytes", "1M", 1 << 20},
		{"gigabytes", "2G", 2 << 30},
		{"terabytes", "1T", 1 << 40},
		{"fractional megabytes", "2.5mb", int64(2.5 * (1 << 20))},
		{"mixed case", "4Kb", 4 * 1024},
		{"explicit bytes suffix", "100b", 100},
		{"negative preserved", "-1", -1},
		{"empty yields zero", "", 0},
		{"whitespace yields zero", "   ", 0},
		{"non-numeric yields zero", "invalid", 0},
		{"suffix only yields zero", "kb", 0},
		{"nan rejected", "nan", 0},
		{"inf rejected", "inf", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSize(tt.input))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"bare number is seconds", "30", 30},
		{"minutes", "2m", 120},
		{"hours", "1h", 3600},
		{"fractional minutes", "2.5m", 150},
		{"seconds suffix", "45s", 45},
		{"milliseconds truncate", "1500ms", 1},
		{"sub-second truncates to zero", "500ms", 0},
		{"microseconds truncate to zero", "10us", 0},
		{"nanoseconds truncate to zero", "10ns", 0},
		{"negative preserved", "-1", -1},
		{"empty yields zero", "", 0},
		{"whitespace yields zero", "   ", 0},
		{"non-numeric yields zero", "invalid", 0},
		{"suffix only yields zero", "m", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input))
		})
	}
}
