package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag_ExtractsTagAndBody(t *testing.T) {
	tag, body, ok := ParseTag("[main] try again")
	assert.True(t, ok)
	assert.Equal(t, "main", tag)
	assert.Equal(t, "try again", body)
}

func TestParseTag_NoTagReturnsWholeText(t *testing.T) {
	tag, body, ok := ParseTag("please re-run")
	assert.False(t, ok)
	assert.Equal(t, "", tag)
	assert.Equal(t, "please re-run", body)
}

func TestParseTag_LeadingWhitespaceTolerated(t *testing.T) {
	tag, body, ok := ParseTag("   [backend]   go ahead")
	assert.True(t, ok)
	assert.Equal(t, "backend", tag)
	assert.Equal(t, "go ahead", body)
}

func TestParseTag_EmptyBodyAfterTag(t *testing.T) {
	tag, body, ok := ParseTag("[frontend]")
	assert.True(t, ok)
	assert.Equal(t, "frontend", tag)
	assert.Equal(t, "", body)
}
