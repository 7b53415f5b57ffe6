package text

import (
	"unicode"
)

// Token is a word or a collapsed run of whitespace.
type Token struct {
	Text  string
	Space bool
}

// Tokenize splits s into alternating word and space tokens. Whitespace runs
// collapse to a single " " token; leading and trailing whitespace is kept
// as tokens so adjacent runs can be joined correctly.
func Tokenize(s string) []Token {
	var tokens []Token
	var cur []rune
	inSpace := false

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, Token{Text: string(cur)})
			cur = cur[:0]
		}
	}

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				flush()
				tokens = append(tokens, Token{Text: " ", Space: true})
				inSpace = true
			}
			continue
		}
		inSpace = false
		cur = append(cur, r)
	}
	flush()
	return tokens
}

// Words returns the words of s, dropping whitespace.
func Words(s string) []string {
	var words []string
	for _, t := range Tokenize(s) {
		if !t.Space {
			words = append(words, t.Text)
		}
	}
	return words
}

// Collapse replaces every whitespace run with a single space, keeping
// leading and trailing spaces.
func Collapse(s string) string {
	var out []rune
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				out = append(out, ' ')
			}
			lastSpace = true
			continue
		}
		out = append(out, r)
		lastSpace = false
	}
	return string(out)
}
