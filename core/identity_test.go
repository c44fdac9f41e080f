package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIdentityToken_CanonicalShape(t *testing.T) {
	tok, ok := ParseIdentityToken("c0p110t0-aaaa-bbbb-cccc-123456789abc")
	assert.True(t, ok)
	assert.Equal(t, "c0p110t0-aaaa-bbbb-cccc-123456789abc", tok)
}

func TestParseIdentityToken_CaseFolded(t *testing.T) {
	tok, ok := ParseIdentityToken("  C0FFEE00-AAAA-BBBB-CCCC-123456789ABC  ")
	assert.True(t, ok)
	assert.Equal(t, "c0ffee00-aaaa-bbbb-cccc-123456789abc", tok)
}

func TestParseIdentityToken_RejectsNonTokens(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		// token embedded in a sentence must not resolve
		"please use c0ffee00-aaaa-bbbb-cccc-123456789abc",
		// wrong length
		"c0ffee00-aaaa-bbbb-cccc-123456789ab",
		"c0ffee00-aaaa-bbbb-cccc-123456789abcd",
		// hyphen misplaced
		"c0ffee00a-aaa-bbbb-cccc-123456789abc",
		// illegal character
		"c0ffee00-aaaa-bbbb-cccc-12345678!abc",
	}
	for _, msg := range cases {
		_, ok := ParseIdentityToken(msg)
		assert.False(t, ok, "message %q should not parse", msg)
	}
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
