package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gompdf/pagebind/internal/config"
	"github.com/gompdf/pagebind/internal/render"
	htmlrender "github.com/gompdf/pagebind/internal/render/html"
	"github.com/gompdf/pagebind/internal/render/pdf"
	"github.com/gompdf/pagebind/pkg/api"
)

type bindOpts struct {
	output   string
	config   string
	layout   string
	format   string
	oracle   string
	pageSize string
	title    string
}

func newBindCmd() *cobra.Command {
	var opts bindOpts

	cmd := &cobra.Command{
		Use:   "bind [input]",
		Short: "Paginate an HTML, Markdown or Word document",
		Long: `Bind flows an HTML, Markdown or Word (.docx) document, from a file or an
http(s) URL, into pages and writes a PDF, a paged HTML preview or a PNG
contact sheet.

Rules, page geometry and stylesheets come from a TOML config file given with
--config or the PAGEBIND_CONFIG environment variable. Flags override it.`,
		Example: `  pagebind bind book.md
  pagebind bind book.html --config book.toml --layout spreads -o out/book.pdf
  pagebind bind https://example.com/essay.html --format html --page-size A5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBind(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "imposition: pages, spreads, booklet or flip")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf, html or png")
	cmd.Flags().StringVar(&opts.oracle, "oracle", "", "overflow measurement: metrics or grid")
	cmd.Flags().StringVar(&opts.pageSize, "page-size", "", "page size: A3, A4, A5, A6, Letter, Legal or Pocket")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title")
	return cmd
}

func runBind(cmd *cobra.Command, input string, opts *bindOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := config.Load(config.Path(opts.config))
	if err != nil {
		return err
	}
	opts.apply(cfg)
	apiOpts, err := cfg.Options()
	if err != nil {
		return err
	}
	apiOpts = append(apiOpts, api.WithLogger(logger))
	binder := api.New(apiOpts...)

	format := cfg.Format()
	out := opts.output
	if out == "" {
		out = defaultOutput(input, format)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := bindTo(cmd, binder, input, out, format, f); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	prog.done("Bound " + out)
	return nil
}

func bindTo(cmd *cobra.Command, binder *api.Binder, input, out, format string, w io.Writer) error {
	logger := loggerFromContext(cmd.Context())

	var (
		r     render.Renderer
		pdfR  *pdf.Renderer
		htmlR *htmlrender.Renderer
	)
	switch format {
	case config.FormatHTML:
		htmlR = binder.NewHTMLRenderer(w)
		r = htmlR
	case config.FormatPNG:
		r = binder.NewPreviewRenderer(w)
	default:
		pdfR = binder.NewPDFRenderer(w)
		r = pdfR
	}

	logger.Info("Binding", "input", input, "format", format, "layout", binder.Options().Layout)
	result, err := binder.WithRenderer(r).BindFile(cmd.Context(), input)
	if err != nil {
		return err
	}
	if htmlR != nil {
		htmlR.Title = result.Title
		htmlR.Styles = result.Styles
	}
	if pdfR != nil {
		pdfR.Options.Title = result.Title
	}
	if err := r.Render(result.Book); err != nil {
		return err
	}

	if n := len(result.Book.Diagnostics); n > 0 {
		logger.Warn("pagination finished with diagnostics", "count", n)
	}
	printSummary(cmd.OutOrStdout(), out, format, result)
	return nil
}

func (o *bindOpts) apply(cfg *config.Config) {
	if o.layout != "" {
		cfg.Output.Layout = o.layout
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.oracle != "" {
		cfg.Output.Oracle = o.oracle
	}
	if o.pageSize != "" {
		cfg.Page = config.PageConfig{Size: o.pageSize}
	}
	if o.title != "" {
		cfg.Output.Title = o.title
	}
}

// defaultOutput derives the output name from the input, e.g. "book.md" to
// "book.pdf". URLs use the last path segment.
func defaultOutput(input, format string) string {
	name := input
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		name = path.Base(u.Path)
		if name == "." || name == "/" || name == "" {
			name = u.Hostname()
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + format
}
