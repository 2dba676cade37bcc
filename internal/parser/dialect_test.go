package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialectForID(t *testing.T) {
	assert.Equal(t, AgentCodex,
		DialectForID("codex:abc-123").Agent)
	assert.Equal(t, AgentClaude,
		DialectForID("abc-123").Agent)
	assert.Equal(t, AgentClaude,
		DialectForID("").Agent)
}
