package classifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `{"categorizedTransactions":[]}`,
			expected: `{"categorizedTransactions":[]}`,
		},
		{
			name:     "json fence with language tag",
			input:    "```json\n{\"categorizedTransactions\":[]}\n```",
			expected: `{"categorizedTransactions":[]}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\":1}\n  ",
			expected: `{"a":1}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, stripFences(test.input))
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"quota exceeded", errors.New("googleapi: Error 429: Quota exceeded"), true},
		{"resource exhausted", errors.New("rpc error: code = ResourceExhausted desc = resource exhausted"), true},
		{"token count", errors.New("input token count 1200000 exceeds the maximum"), true},
		{"payload too large", errors.New("request payload is too large"), true},
		{"network error", errors.New("connection refused"), false},
		{"auth error", errors.New("API key not valid"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, isQuotaError(test.err))
		})
	}
}
