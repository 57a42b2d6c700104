package redact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/tunedl/redact"
)

func TestString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "short value",
			input:    "secret",
			expected: "******",
		},
		{
			name:     "eight characters",
			input:    "abcdefgh",
			expected: "ab****gh",
		},
		{
			name:     "odd length",
			input:    "0123456789a",
			expected: "01*******9a",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := redact.String(test.input)
			assert.Equal(t, test.expected, got)
			assert.Len(t, got, len(test.input))
		})
	}
}
