package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/measure"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/pkg/api"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

const book = `
[page]
size = "A5"

[margins]
top = 20
inner = 40

[output]
layout = "Spreads"
format = "html"
oracle = "grid"
title = "Field Notes"
delay = "1ms"
stylesheets = ["print.css"]

[[rule]]
kind = "break-before"
selector = "h1"

[[rule]]
kind = "footnote"
selector = ".fn"
attr = "data-note"
name = "notes"

[[rule]]
kind = "page-number"
`

func writeBook(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "print.css"), []byte("p { margin: 0 }"), 0o644))
	path := filepath.Join(dir, "book.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeBook(t, book))
	require.NoError(t, err)

	size, err := cfg.Size()
	require.NoError(t, err)
	assert.Equal(t, page.SizeA5, size)
	assert.Equal(t, 20.0, cfg.Margins.Top)
	assert.Equal(t, page.DefaultMargins.Bottom, cfg.Margins.Bottom, "unset keys keep defaults")
	assert.Equal(t, FormatHTML, cfg.Format())
	require.Len(t, cfg.Rules, 3)

	opts, err := cfg.Options()
	require.NoError(t, err)
	o := api.New(opts...).Options()
	assert.Equal(t, page.SizeA5.Width, o.PageWidth)
	assert.Equal(t, 40.0, o.MarginInner)
	assert.Equal(t, arrange.LayoutSpreads, o.Layout)
	assert.Equal(t, api.OracleGrid, o.OracleKind)
	assert.Equal(t, "Field Notes", o.Title)
	assert.Equal(t, []string{"p { margin: 0 }"}, o.Stylesheets)
	require.Len(t, o.Rules, 3)
	assert.Equal(t, "break-before", o.Rules[0].Name)
	assert.Equal(t, "notes", o.Rules[1].Name)
}

func TestLoadEmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, cfg.Format())
	size, err := cfg.Size()
	require.NoError(t, err)
	assert.Equal(t, page.SizePocket, size)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown key", "[page]\ncolour = \"red\""},
		{"bad toml", "[page"},
		{"unknown size", "[page]\nsize = \"B7\""},
		{"negative margin", "[margins]\ntop = -1"},
		{"layout", "[output]\nlayout = \"scroll\""},
		{"format", "[output]\nformat = \"docx\""},
		{"oracle", "[output]\noracle = \"ruler\""},
		{"delay", "[output]\ndelay = \"soon\""},
		{"rule kind", "[[rule]]\nkind = \"sidebar\"\nselector = \"aside\""},
		{"rule selector", "[[rule]]\nkind = \"spread\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeBook(t, tt.text))
			require.Error(t, err)
			assert.NotEmpty(t, pberrors.GetCode(err))
		})
	}
}

func TestCustomSize(t *testing.T) {
	cfg, err := Parse("[page]\nwidth = 200\nheight = 250", "")
	require.NoError(t, err)
	size, err := cfg.Size()
	require.NoError(t, err)
	assert.Equal(t, 200.0, size.Width)
	assert.Equal(t, "Custom", size.Name)
}

func TestMissingStylesheet(t *testing.T) {
	cfg, err := Parse("[output]\nstylesheets = [\"absent.css\"]", t.TempDir())
	require.NoError(t, err)
	_, err = cfg.Options()
	assert.True(t, pberrors.Is(err, pberrors.ErrCodeNotFound))
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/pagebind.toml")
	assert.Equal(t, "/etc/pagebind.toml", Path(""))
	assert.Equal(t, "mine.toml", Path("mine.toml"))
}

func TestConfiguredRulesBind(t *testing.T) {
	cfg, err := Parse("[[rule]]\nkind = \"break-before\"\nselector = \"h2\"\n[[rule]]\nkind = \"page-number\"", "")
	require.NoError(t, err)
	opts, err := cfg.Options()
	require.NoError(t, err)

	oracle := measure.OracleFunc(func(p *page.Page) bool { return utf8.RuneCountInString(p.Text()) > 100 })
	b := api.New(append(opts, api.WithOracle(oracle))...)
	result, err := b.BindHTML(context.Background(), "<body><p>intro</p><h2>Part</h2><p>text</p></body>")
	require.NoError(t, err)
	require.Len(t, result.Book.Pages, 3)
	assert.True(t, result.Book.Pages[1].Blank)
	assert.Equal(t, 3, result.Book.Pages[2].Number)
}
