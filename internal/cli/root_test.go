package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagebind/internal/config"
)

const bookMarkdown = `# Chapter One

The first chapter opens here.

# Chapter Two

The second chapter follows.
`

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvConfig, "")

	var stdout, logs bytes.Buffer
	root := newRootCmd(&logs)
	root.SetOut(&stdout)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), logs.String(), err
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersion("dev", "", "") })

	out, _, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pagebind 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}

func TestBindPDF(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "book.md", bookMarkdown)
	out := filepath.Join(dir, "out", "book.pdf")

	stdout, logs, err := runRoot(t, "bind", in, "-o", out, "--oracle", "grid", "--page-size", "A5")
	require.NoError(t, err)
	assert.Contains(t, stdout, out)
	assert.Contains(t, stdout, "Chapter One")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Contains(t, logs, "Bound "+out)
}

func TestBindHTMLWithConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "book.md", bookMarkdown)
	writeFile(t, dir, "print.css", "p { color: #333333 }")
	cfg := writeFile(t, dir, "book.toml", `
[output]
format = "html"
layout = "spreads"
oracle = "grid"
stylesheets = ["print.css"]

[[rule]]
kind = "break-before"
selector = "h1"
`)

	_, _, err := runRoot(t, "bind", in, "--config", cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "book.html"))
	require.NoError(t, err)
	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "layout-spreads")
	assert.Contains(t, doc, "<title>Chapter One</title>")
	assert.Contains(t, doc, "#333333")
	assert.GreaterOrEqual(t, strings.Count(doc, `class="page `), 2)
}

func TestBindConfigFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "book.md", bookMarkdown)
	cfg := writeFile(t, dir, "book.toml", "[output]\nformat = \"html\"\noracle = \"grid\"\n")

	var logs bytes.Buffer
	root := newRootCmd(&logs)
	root.SetArgs([]string{"bind", in})
	t.Setenv(config.EnvConfig, cfg)
	require.NoError(t, root.ExecuteContext(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "book.html"))
	assert.NoError(t, err)
}

func TestBindErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "book.md", bookMarkdown)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"bind"}},
		{"unknown layout", []string{"bind", in, "--layout", "triptych"}},
		{"unknown format", []string{"bind", in, "--format", "docx"}},
		{"unknown page size", []string{"bind", in, "--page-size", "B7"}},
		{"missing config", []string{"bind", in, "--config", filepath.Join(dir, "none.toml")}},
		{"missing source", []string{"bind", filepath.Join(dir, "none.md"), "-o", filepath.Join(dir, "none.pdf")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runRoot(t, tt.args...)
			assert.Error(t, err)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "none.pdf"))
	assert.True(t, os.IsNotExist(err), "failed bind leaves no output behind")
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"book.md", "pdf", "book.pdf"},
		{"docs/guide.html", "html", "docs/guide.html"},
		{"https://example.com/essays/one.html", "pdf", "one.pdf"},
		{"https://example.com/", "pdf", "example.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultOutput(tt.input, tt.format), tt.input)
	}
}

func TestBindPNG(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "book.md", bookMarkdown)

	_, _, err := runRoot(t, "bind", in, "--format", "png", "--oracle", "grid", "--layout", "spreads")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "book.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
