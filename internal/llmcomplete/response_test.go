package llmcomplete

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  /** Adds two ints. */\n", "/** Adds two ints. */"},
		{"think block", "<think>\nreasoning\n</think>\n/** Adds. */", "/** Adds. */"},
		{"several think blocks", "<think>a</think>/** A. */<think>b</think>", "/** A. */"},
		{"lone close marker", "reasoning that lost its opener</think>\n// Adds.", "// Adds."},
		{"fenced", "```java\n/**\n * Adds.\n */\n```", "/**\n * Adds.\n */"},
		{"last fence wins", "```\n// first\n```\n\n```go\n// Second.\n```", "// Second."},
		{"tilde fence", "~~~\n// Adds.\n~~~", "// Adds."},
		{"fence after think", "<think>x</think>\n```\n// Adds.\n```", "// Adds."},
		{"fence not at start", "Here you go:\n```\n// Adds.\n```", "Here you go:\n```\n// Adds.\n```"},
		{"only thinking", "<think>hmm</think>", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.raw))
		})
	}
}
