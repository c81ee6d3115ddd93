package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_StatusAndItems(t *testing.T) {
	// Given: a writer over a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing status, items, and details
	w.Statusf("✓", "indexed %d items", 3)
	w.Item(1, "opp-1")
	w.Detail("good first issue")
	w.Status("", "no icon")

	// Then: each line is formatted with its prefix
	out := buf.String()
	assert.Contains(t, out, "✓ indexed 3 items")
	assert.Contains(t, out, " 1. opp-1")
	assert.Contains(t, out, "      good first issue")
	assert.Contains(t, out, "   no icon")
}

func TestWriter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	require.NoError(t, w.JSON(map[string]int{"open": 2}))
	assert.JSONEq(t, `{"open": 2}`, buf.String())
}

func TestBar(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		width  int
		filled int
	}{
		{name: "empty", value: 0, width: 10, filled: 0},
		{name: "half", value: 0.5, width: 10, filled: 5},
		{name: "full", value: 1, width: 10, filled: 10},
		{name: "clamped above", value: 1.7, width: 10, filled: 10},
		{name: "clamped below", value: -0.3, width: 10, filled: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := Bar(tt.value, tt.width)
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, tt.width-tt.filled, strings.Count(bar, "░"))
		})
	}
}

func TestBar_ZeroWidth(t *testing.T) {
	assert.Empty(t, Bar(0.5, 0))
}
