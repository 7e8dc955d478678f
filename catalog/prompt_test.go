package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProductPrompt(t *testing.T) {
	products := []Product{
		{ID: "12", Name: "Bota Couro", Price: 1299.9, Description: "Couro legítimo\ncano alto"},
		{ID: "13", Name: "Cinto"},
	}

	prompt := BuildProductPrompt(products)

	assert.True(t, strings.HasPrefix(prompt, headerOpen))
	assert.Contains(t, prompt, "This catalog contains exactly 2 products.")
	assert.Contains(t, prompt, "1. Bota Couro | price: 1299.90 | id: 12\n   Couro legítimo cano alto")
	assert.Contains(t, prompt, "2. Cinto | id: 13")

	n, ok := HeaderCount(prompt)
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestHeaderCount(t *testing.T) {
	n, ok := HeaderCount("You are a helpful seller.\n" + VerificationHeader(1))
	require.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = HeaderCount("You are a helpful seller.")
	assert.False(t, ok)
}
