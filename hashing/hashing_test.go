package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zeebo/xxh3"
)

func TestSum64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Sum64("Idle"), Sum64("Idle"))
	assert.NotEqual(t, Sum64("Idle"), Sum64("Walk"))
	assert.Equal(t, xxh3.HashString("Run"), Sum64("Run"))
}

func TestLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short", "a"},
		{"long", "a-rather-long-machine-name-with-dashes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			label := Label(tt.input)
			assert.Len(t, label, 16)
			assert.Equal(t, label, Label(tt.input))
		})
	}
}
