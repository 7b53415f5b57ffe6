// Package css parses the subset of CSS used to style measured content:
// rule sets with comma-separated selector groups and plain declarations.
package css

import (
	"errors"
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct{}

// Rule represents a CSS rule set
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
	// AtRules holds the raw text of skipped at-rule blocks such as @page
	// or @media, keyed by their keyword.
	AtRules map[string][]string
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader. Malformed rule sets are skipped.
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	sheet := &Stylesheet{AtRules: map[string][]string{}}
	for _, block := range splitBlocks(stripComments(string(content))) {
		if strings.HasPrefix(block, "@") {
			keyword := block[1:]
			if i := strings.IndexAny(keyword, " \t\n{"); i >= 0 {
				keyword = keyword[:i]
			}
			sheet.AtRules[keyword] = append(sheet.AtRules[keyword], block)
			continue
		}
		rule, err := parseRule(block)
		if err != nil {
			continue
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
	return sheet, nil
}

// ParseDeclarations parses the body of a style attribute.
func ParseDeclarations(body string) []*Declaration {
	return parseDeclarations(stripComments(body))
}

func parseRule(block string) (*Rule, error) {
	open := strings.IndexByte(block, '{')
	if open < 0 || !strings.HasSuffix(block, "}") {
		return nil, errors.New("invalid rule format")
	}

	var selectors []string
	for _, sel := range strings.Split(block[:open], ",") {
		if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
			selectors = append(selectors, sel)
		}
	}
	if len(selectors) == 0 {
		return nil, errors.New("no selectors found")
	}

	return &Rule{
		Selectors:    selectors,
		Declarations: parseDeclarations(block[open+1 : len(block)-1]),
	}, nil
}

func parseDeclarations(body string) []*Declaration {
	var out []*Declaration
	for _, part := range strings.Split(body, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}

		important := false
		if v, found := strings.CutSuffix(value, "!important"); found {
			important = true
			value = strings.TrimSpace(v)
		}
		out = append(out, &Declaration{Property: prop, Value: value, Important: important})
	}
	return out
}

// stripComments removes /* */ comments. An unterminated comment swallows
// the rest of the input.
func stripComments(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		s = s[start+2+end+2:]
	}
}

// splitBlocks splits content into top-level brace-balanced blocks, each
// including its prelude.
func splitBlocks(content string) []string {
	var blocks []string
	var cur strings.Builder
	depth := 0

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				cur.WriteByte(c)
				blocks = append(blocks, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
			if depth < 0 {
				depth = 0
				continue
			}
		case ';':
			// statement at-rules such as @import end here
			if depth == 0 {
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}
	return blocks
}
