package api

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/measure"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/pagination"
	"github.com/gompdf/pagebind/internal/rules"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

func capacity(n int) measure.Oracle {
	return measure.OracleFunc(func(p *page.Page) bool {
		return utf8.RuneCountInString(p.Text()) > n
	})
}

const chapters = `<html><head><title>Two Chapters</title><style>h1 { font-size: 20px }</style></head>
<body><h1>One</h1><p>first text</p><h1>Two</h1><p>second text</p></body></html>`

func TestBindProgrammaticTree(t *testing.T) {
	root := content.Element("body", nil,
		content.Element("p", nil, content.Text("aaaa bbbb cccc dddd")),
	)
	b := New(WithOracle(capacity(10)), WithRules(rules.PageNumber()))

	result, err := b.Bind(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Book.Pages, 2)
	assert.Equal(t, 2, result.Book.Pages[1].Number)
	assert.Equal(t, page.SizePocket, result.Book.Size)

	_, err = uuid.Parse(result.PassID)
	assert.NoError(t, err)
	again, err := b.Bind(context.Background(), root)
	require.NoError(t, err)
	assert.NotEqual(t, result.PassID, again.PassID)
}

func TestBindHTML(t *testing.T) {
	b := New(WithOracle(capacity(100)), WithRules(rules.BreakBefore("h1")), WithStylesheet("p { margin: 0 }"))

	result, err := b.BindHTML(context.Background(), chapters)
	require.NoError(t, err)
	assert.Equal(t, "Two Chapters", result.Title)
	assert.Equal(t, []string{"h1 { font-size: 20px }", "p { margin: 0 }"}, result.Styles)
	require.Len(t, result.Book.Pages, 3)
	assert.True(t, result.Book.Pages[1].Blank)
	assert.True(t, result.Book.Pages[2].AlwaysRight)
}

func TestConcurrentBindsShareRules(t *testing.T) {
	b := New(WithOracle(capacity(100)), WithRules(rules.BreakBefore("h1"), rules.PageNumber()),
		WithRuleMap(map[string]*pagination.Rule{"paragraphs": {Selector: "p", AfterAdd: func(*page.Box, *pagination.State) {}}}))

	const passes = 8
	results := make([]*Result, passes)
	var g errgroup.Group
	for i := range passes {
		g.Go(func() error {
			r, err := b.BindHTML(context.Background(), chapters)
			results[i] = r
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, r := range results {
		require.Len(t, r.Book.Pages, 3)
		assert.Equal(t, 3, r.Book.Pages[2].Number)
	}
	assert.Equal(t, "break-before", b.Options().Rules[0].Name)
	assert.Empty(t, b.Options().RuleMap["paragraphs"].Name, "registration leaves the caller's rule alone")
}

func TestBindHTMLWithLayoutOracle(t *testing.T) {
	long := "<body>" + strings.Repeat("<p>a line of words that wraps across the page</p>", 40) + "</body>"
	for _, kind := range []OracleKind{OracleGrid, OracleMetrics} {
		result, err := New(WithOracleKind(kind)).BindHTML(context.Background(), long)
		require.NoError(t, err, kind)
		assert.Greater(t, result.Book.Len(), 1, kind)
		assert.Empty(t, result.Book.Diagnostics, kind)
	}
}

func TestBindMarkdown(t *testing.T) {
	result, err := New(WithOracle(capacity(100))).BindMarkdown(context.Background(), "# Title\n\nbody text\n")
	require.NoError(t, err)
	assert.Equal(t, "Title", result.Title)
	assert.Contains(t, result.Book.Pages[0].Text(), "body text")

	override, err := New(WithOracle(capacity(100)), WithTitle("Mine")).BindMarkdown(context.Background(), "# Title\n")
	require.NoError(t, err)
	assert.Equal(t, "Mine", override.Title)
}

func TestBindFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.css"), []byte("p { color: red }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.html"), []byte(
		`<html><head><link rel="stylesheet" href="book.css"><link rel="stylesheet" href="missing.css"></head><body><p>hi</p></body></html>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# Notes\n\nsome notes"), 0o644))

	b := New(WithOracle(capacity(100)))

	html, err := b.BindFile(context.Background(), filepath.Join(dir, "book.html"))
	require.NoError(t, err)
	assert.Equal(t, "hi", strings.TrimSpace(html.Book.Pages[0].Text()))
	assert.Empty(t, html.Styles, "a failed link drops the linked group")

	md, err := b.BindFile(context.Background(), filepath.Join(dir, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "Notes", md.Title)

	_, err = b.BindFile(context.Background(), filepath.Join(dir, "nope.html"))
	assert.True(t, pberrors.Is(err, pberrors.ErrCodeNotFound))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		code pberrors.Code
	}{
		{"zero size", WithPageSize(0, 100), pberrors.ErrCodeInvalidConfig},
		{"margins too wide", WithMargins(10, 10, 200, 200), pberrors.ErrCodeInvalidConfig},
		{"layout", WithLayout("scroll"), pberrors.ErrCodeInvalidLayout},
		{"oracle", WithOracleKind("ruler"), pberrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.opt)
			err := b.Validate()
			assert.True(t, pberrors.Is(err, tt.code), "got %v", err)

			_, err = b.Bind(context.Background(), content.Element("body", nil))
			assert.Error(t, err)
		})
	}
	assert.NoError(t, New().Validate())
}

func TestRenderOutputs(t *testing.T) {
	b := New(WithOracleKind(OracleGrid), WithLayout(arrange.LayoutSpreads), WithRules(rules.PageNumber()))
	result, err := b.BindHTML(context.Background(), chapters)
	require.NoError(t, err)

	var pdfOut bytes.Buffer
	require.NoError(t, b.RenderPDF(result, &pdfOut))
	assert.True(t, bytes.HasPrefix(pdfOut.Bytes(), []byte("%PDF-")))

	var htmlOut bytes.Buffer
	require.NoError(t, b.RenderHTML(result, &htmlOut))
	assert.Contains(t, htmlOut.String(), "<title>Two Chapters</title>")
	assert.Contains(t, htmlOut.String(), "h1 { font-size: 20px }")

	var pngOut bytes.Buffer
	require.NoError(t, b.RenderPNG(result, &pngOut))
	assert.True(t, bytes.HasPrefix(pngOut.Bytes(), []byte("\x89PNG")))

	assert.Error(t, b.RenderPDF(nil, &pdfOut))
	assert.Error(t, b.RenderPNG(nil, &pngOut))
}

type recorder struct {
	progress []float64
	rendered *page.Book
}

func (r *recorder) Render(book *page.Book) error {
	r.rendered = book
	return nil
}

func (r *recorder) RenderProgress(_ *page.Book, fraction float64) {
	r.progress = append(r.progress, fraction)
}

func TestWithRendererReceivesProgress(t *testing.T) {
	rec := &recorder{}
	var user []pagination.Progress
	b := New(WithOracle(capacity(5)), WithProgress(func(p pagination.Progress) { user = append(user, p) })).WithRenderer(rec)

	result, err := b.Bind(context.Background(), content.Element("p", nil, content.Text("aaaa bbbb cccc")))
	require.NoError(t, err)
	require.NoError(t, rec.Render(result.Book))

	assert.Len(t, rec.progress, result.Book.Len())
	assert.Len(t, user, result.Book.Len())
	assert.Same(t, result.Book, rec.rendered)
}

func TestBindDocxFile(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().Style("Heading1").AddText("Report")
	w.AddParagraph().AddText("quarterly figures")
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	result, err := New(WithOracle(capacity(100))).BindFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Report", result.Title)
	assert.Contains(t, result.Book.Pages[0].Text(), "quarterly figures")
}
