package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("fuck", Normalize("  FuCk "))
	assert.Equal("cafe", Normalize("café"))
	assert.Equal("", Normalize("   "))
	assert.Equal([]string{"one", "two"}, NormalizeAll([]string{" One", "", "TWO "}))
}

func TestMatchBoundaries(t *testing.T) {
	assert := assert.New(t)

	terms := []string{"ass", "fuck"}
	assert.True(Match("you dumb ASS!", terms))
	assert.True(Match("fuck", terms))
	assert.True(Match("what the fuck, really", terms))
	assert.False(Match("a classic assignment", terms))
	assert.False(Match("", terms))
	assert.False(Match("totally fine message", nil))
}

func TestMatchLiteralRequired(t *testing.T) {
	assert := assert.New(t)

	// censored variant does not match the uncensored term
	assert.False(Match("you are a f*ck idiot", []string{"fuck"}))
	// but does match when the literal variant is on the list
	assert.True(Match("you are a f*ck idiot", []string{"f*ck"}))
}

func TestMatchSubstringFallback(t *testing.T) {
	assert := assert.New(t)

	// "c++" does not compile as part of a boundary pattern; falls back to
	// containment, even mid-word
	assert.True(Match("xc++y", []string{"c++"}))
	assert.False(Match("see plus plus", []string{"c++"}))
}

func TestMatchAccentFolding(t *testing.T) {
	assert := assert.New(t)

	assert.True(Match("such a fúck move", []string{"fuck"}))
	assert.True(Match("such a fuck move", []string{"fúck"}))
}

func TestMatchAny(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("idiot", MatchAny("what an IDIOT he is", []string{"moron", "idiot"}))
	assert.Equal("", MatchAny("all good here", []string{"moron", "idiot"}))
}
