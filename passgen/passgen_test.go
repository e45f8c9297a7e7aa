package passgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlyFrom(s, set string) bool {
	for _, r := range s {
		if !strings.ContainsRune(set, r) {
			return false
		}
	}
	return true
}

func TestGenerate_LowercaseOnly(t *testing.T) {
	pw, err := Generate(Options{Length: 8})
	require.NoError(t, err)
	assert.Len(t, pw, 8)
	assert.True(t, onlyFrom(pw, Lowercase), "got %q", pw)
}

func TestGenerate_LengthBounds(t *testing.T) {
	tests := []struct {
		length  int
		wantErr bool
	}{
		{7, true},
		{8, false},
		{128, false},
		{129, true},
		{0, true},
		{-1, true},
	}
	for _, tt := range tests {
		pw, err := Generate(Options{Length: tt.length, Symbols: true, Numbers: true, Uppercase: true})
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidLength, "length %d", tt.length)
			continue
		}
		require.NoError(t, err)
		assert.Len(t, pw, tt.length)
	}
}

func TestGenerate_EnabledClassesPresent(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := Generate(Options{Length: 8, Symbols: true, Numbers: true, Uppercase: true})
		require.NoError(t, err)

		assert.True(t, strings.ContainsAny(pw, Lowercase), "no lowercase in %q", pw)
		assert.True(t, strings.ContainsAny(pw, Uppercase), "no uppercase in %q", pw)
		assert.True(t, strings.ContainsAny(pw, Digits), "no digit in %q", pw)
		assert.True(t, strings.ContainsAny(pw, Symbols), "no symbol in %q", pw)
		assert.True(t, onlyFrom(pw, Lowercase+Uppercase+Digits+Symbols))
	}
}

func TestGenerate_DisabledClassesAbsent(t *testing.T) {
	pw, err := Generate(Options{Length: 128, Numbers: true})
	require.NoError(t, err)
	assert.True(t, onlyFrom(pw, Lowercase+Digits), "got %q", pw)
}

func TestGenerate_Varies(t *testing.T) {
	a, err := Generate(Options{Length: 32, Uppercase: true})
	require.NoError(t, err)
	b, err := Generate(Options{Length: 32, Uppercase: true})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
