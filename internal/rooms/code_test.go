package rooms

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeAlphabetExcludesAmbiguousChars(t *testing.T) {
	for _, ch := range "01OIL" {
		assert.NotContains(t, CodeAlphabet, string(ch))
	}
	assert.Len(t, CodeAlphabet, 31)
}

func TestRandomCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for j := 0; j < len(code); j++ {
			assert.True(t, strings.ContainsRune(CodeAlphabet, rune(code[j])),
				"unexpected character %q in code %s", code[j], code)
		}
	}
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("ABC234"))
	assert.True(t, ValidCode("ZZZZZZ"))
	assert.False(t, ValidCode("ABC23"))   // too short
	assert.False(t, ValidCode("ABC2345")) // too long
	assert.False(t, ValidCode("abc234"))  // lowercase
	assert.False(t, ValidCode("ABC230"))  // 0 not in alphabet
	assert.False(t, ValidCode("ABC23O"))  // O not in alphabet
	assert.False(t, ValidCode(""))
}

func TestGenerateUniqueCodeRetriesOnCollision(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls < 3, nil // first two candidates are taken
	}
	code, err := GenerateUniqueCode(context.Background(), exists)
	require.NoError(t, err)
	assert.True(t, ValidCode(code))
	assert.Equal(t, 3, calls)
}

func TestGenerateUniqueCodeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exists := func(ctx context.Context, code string) (bool, error) {
		return true, nil
	}
	_, err := GenerateUniqueCode(ctx, exists)
	assert.Error(t, err)
}
