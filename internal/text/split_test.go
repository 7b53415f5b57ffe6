package text

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capacity fits any prefix of at most n runes.
func capacity(n int) FitFunc {
	return func(prefix string) bool { return utf8.RuneCountInString(prefix) <= n }
}

func TestSplitWholeRunFitsWithOneQuery(t *testing.T) {
	calls := 0
	res := Split("Test text content", func(string) bool {
		calls++
		return true
	})

	assert.Equal(t, "Test text content", res.Placed)
	assert.Empty(t, res.Remainder)
	assert.False(t, res.Cancelled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Queries)
}

func TestSplitBacksOffToWordBoundary(t *testing.T) {
	tests := []struct {
		name      string
		run       string
		cap       int
		placed    string
		remainder string
	}{
		{"exact word end", "Test text content", 4, "Test", " text content"},
		{"inside second word", "Test text content", 7, "Test", " text content"},
		{"two words", "Test text content", 12, "Test text", " content"},
		{"at space", "Test text content", 9, "Test text", " content"},
		{"scenario", "word1 word2 word3", 11, "word1 word2", " word3"},
		{"multibyte", "héllo wörld again", 13, "héllo wörld", " again"},
		{"tab boundary", "alpha\tbeta", 7, "alpha", "\tbeta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Split(tt.run, capacity(tt.cap))
			require.False(t, res.Cancelled)
			assert.Equal(t, tt.placed, res.Placed)
			assert.Equal(t, tt.remainder, res.Remainder)
		})
	}
}

func TestSplitCancelsWhenFirstWordDoesNotFit(t *testing.T) {
	for _, tt := range []struct {
		run string
		cap int
	}{
		{"Test text content", 2},
		{"Test text content", 0},
		{"   Test", 2},
		{"x", 0},
	} {
		res := Split(tt.run, capacity(tt.cap))
		assert.True(t, res.Cancelled, "%q cap %d", tt.run, tt.cap)
		assert.Empty(t, res.Placed)
		assert.Equal(t, tt.run, res.Remainder)
	}
}

func TestSplitWhitespaceOnlyRun(t *testing.T) {
	res := Split("   ", capacity(1))
	assert.False(t, res.Cancelled)
	assert.Empty(t, res.Placed)
	assert.Equal(t, "   ", res.Remainder)
}

func TestSplitIsLosslessAndWordSafe(t *testing.T) {
	runs := []string{
		"The quick brown fox jumps over the lazy dog",
		"a b c d e f g h",
		"  leading and trailing  ",
		"unbroken-very-long-word then short",
		"mixed\nline\tbreaks and  double  spaces",
	}
	for _, run := range runs {
		for c := 0; c <= utf8.RuneCountInString(run)+1; c++ {
			res := Split(run, capacity(c))
			require.Equal(t, run, res.Placed+res.Remainder, "run %q cap %d", run, c)
			if res.Cancelled || res.Remainder == "" || res.Placed == "" {
				continue
			}
			first, _ := utf8.DecodeRuneInString(res.Remainder)
			assert.True(t, unicode.IsSpace(first), "run %q cap %d: remainder %q must start at whitespace", run, c, res.Remainder)
			assert.LessOrEqual(t, utf8.RuneCountInString(res.Placed), c)
			assert.True(t, strings.HasPrefix(run, res.Placed))
		}
	}
}

func TestSplitQueryCountIsLogarithmic(t *testing.T) {
	run := strings.Repeat("word ", 200)
	res := Split(run, capacity(500))
	require.False(t, res.Cancelled)
	assert.LessOrEqual(t, res.Queries, 12)
}

func TestFitRunes(t *testing.T) {
	assert.Equal(t, "Supercal", FitRunes("Supercalifragilistic", capacity(8)))
	assert.Equal(t, "", FitRunes("Supercalifragilistic", capacity(0)))
	assert.Equal(t, "héll", FitRunes("héllo", capacity(4)))
	assert.Equal(t, "abc", FitRunes("abc", capacity(10)))
	// e followed by a combining acute accent is one character.
	assert.Equal(t, "h", FitRunes("he\u0301llo", capacity(2)))
	assert.Equal(t, "he\u0301", FitRunes("he\u0301llo", capacity(3)))
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("  hello \n world!")
	require.Len(t, toks, 4)
	assert.Equal(t, Token{Text: " ", Space: true}, toks[0])
	assert.Equal(t, Token{Text: "hello"}, toks[1])
	assert.Equal(t, Token{Text: " ", Space: true}, toks[2])
	assert.Equal(t, Token{Text: "world!"}, toks[3])

	assert.Equal(t, []string{"a", "b"}, Words(" a\tb "))
	assert.Equal(t, " a b ", Collapse("  a \n\t b   "))
}
