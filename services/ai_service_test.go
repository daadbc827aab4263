package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", errors.New("googleapi: Error 429: Resource has been exhausted"), true},
		{"rate limit text", errors.New("rate limit exceeded, retry later"), true},
		{"quota text", errors.New("Quota exceeded for quota metric"), true},
		{"resource exhausted", errors.New("rpc error: code = ResourceExhausted desc = resource exhausted"), true},
		{"auth failure", errors.New("API key not valid"), false},
		{"network failure", errors.New("dial tcp: connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimitError(tt.err))
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanModelJSON(tt.input))
		})
	}
}
