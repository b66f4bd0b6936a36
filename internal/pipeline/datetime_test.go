package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveEventTime_Absolute(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, tzUTC8)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"rfc3339 with offset", "2026-09-15T09:30:00+08:00", "2026-09-15T09:30:00+08:00"},
		{"rfc3339 utc renormalized", "2026-09-15T01:30:00Z", "2026-09-15T09:30:00+08:00"},
		{"naive datetime", "2026-09-15 09:30:00", "2026-09-15T09:30:00+08:00"},
		{"minute precision", "2026-09-15 09:30", "2026-09-15T09:30:00+08:00"},
		{"slash date", "2026/09/15", "2026-09-15T00:00:00+08:00"},
		{"date only", "2026-09-15", "2026-09-15T00:00:00+08:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveEventTime(tt.raw, now)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveEventTime_NaturalLanguage(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, tzUTC8)

	got, ok := resolveEventTime("tomorrow at 3pm", now)
	assert.True(t, ok)
	assert.Equal(t, "2026-03-02T15:00:00+08:00", got)
}

func TestResolveEventTime_Unresolvable(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, tzUTC8)

	for _, raw := range []string{"", "   ", "???"} {
		_, ok := resolveEventTime(raw, now)
		assert.False(t, ok, "raw %q", raw)
	}
}
