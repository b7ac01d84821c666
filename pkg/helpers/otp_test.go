package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenConfirmationCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenConfirmationCode()
		require.NoError(t, err)
		require.Len(t, code, ConfirmationCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(ConfirmationAlphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestGenCode(t *testing.T) {
	code, err := GenCode("ab", 10)
	require.NoError(t, err)
	assert.Len(t, code, 10)
	assert.Empty(t, strings.Trim(code, "ab"))
}
