package otp

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestRandomCode_Width(t *testing.T) {
	g := NewGOTPGenerator()

	for _, digits := range []int{4, 6, 8} {
		code := g.RandomCode("a@x.com", digits)
		assert.Len(t, code, digits)
		for _, r := range code {
			assert.True(t, unicode.IsDigit(r))
		}
	}
}

func TestRandomCode_Varies(t *testing.T) {
	g := NewGOTPGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[g.RandomCode("a@x.com", 6)] = true
	}

	// Random nonce and counter make collisions across 20 draws unlikely.
	assert.Greater(t, len(seen), 1)
}
