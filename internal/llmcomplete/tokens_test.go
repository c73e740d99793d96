package llmcomplete

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 2, CountTokens("hello world"))
	assert.Equal(t, 0, CountTokens(""))

	long := strings.Repeat("func f() {}\n", 100)
	n := CountTokens(long)
	assert.Greater(t, n, 100)
	assert.Less(t, n, len(long))
}
