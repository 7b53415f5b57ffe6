// Package config loads book settings from a TOML file.
//
//	[page]
//	size = "A5"
//
//	[margins]
//	top = 40
//	bottom = 60
//	inner = 30
//	outer = 50
//
//	[output]
//	layout = "spreads"
//	stylesheets = ["print.css"]
//
//	[[rule]]
//	kind = "break-before"
//	selector = "h1"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/pagination"
	"github.com/gompdf/pagebind/internal/rules"
	"github.com/gompdf/pagebind/pkg/api"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// EnvConfig names the config file used when none is given.
const EnvConfig = "PAGEBIND_CONFIG"

// Config is a book file.
type Config struct {
	Page    PageConfig    `toml:"page"`
	Margins MarginsConfig `toml:"margins"`
	Output  OutputConfig  `toml:"output"`
	Rules   []RuleConfig  `toml:"rule"`

	// dir resolves relative stylesheet paths.
	dir string
}

type PageConfig struct {
	// Size names a standard size; Width and Height override it.
	Size   string  `toml:"size"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type MarginsConfig struct {
	Top    float64 `toml:"top"`
	Bottom float64 `toml:"bottom"`
	Inner  float64 `toml:"inner"`
	Outer  float64 `toml:"outer"`
}

type OutputConfig struct {
	Layout      string   `toml:"layout"`
	Format      string   `toml:"format"`
	Oracle      string   `toml:"oracle"`
	Title       string   `toml:"title"`
	Author      string   `toml:"author"`
	Delay       string   `toml:"delay"`
	Stylesheets []string `toml:"stylesheets"`
}

// RuleConfig is one [[rule]] entry.
type RuleConfig struct {
	Kind     string `toml:"kind"`
	Name     string `toml:"name"`
	Selector string `toml:"selector"`
	// Attr is the footnote text attribute.
	Attr string `toml:"attr"`
}

// Output formats.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatPNG  = "png"
)

// Default returns the settings used without a config file.
func Default() *Config {
	return &Config{
		Page: PageConfig{Size: page.SizePocket.Name},
		Margins: MarginsConfig{
			Top:    page.DefaultMargins.Top,
			Bottom: page.DefaultMargins.Bottom,
			Inner:  page.DefaultMargins.Inner,
			Outer:  page.DefaultMargins.Outer,
		},
		Output: OutputConfig{
			Layout: string(arrange.LayoutPages),
			Format: FormatPDF,
			Oracle: string(api.OracleMetrics),
		},
	}
}

// Path returns flag if set, else the PAGEBIND_CONFIG environment variable.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(EnvConfig)
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, pberrors.New(pberrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads a config from TOML text. Relative stylesheet paths resolve
// against dir.
func Parse(text, dir string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, cfg); err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidConfig, err, "parse config")
	}
	cfg.dir = dir
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Size resolves the page size.
func (c *Config) Size() (page.Size, error) {
	s := page.Size{Name: "Custom"}
	if c.Page.Size != "" {
		named, ok := page.SizeByName(c.Page.Size)
		if !ok {
			return page.Size{}, pberrors.New(pberrors.ErrCodeInvalidConfig, "unknown page size %q", c.Page.Size)
		}
		s = named
	}
	if c.Page.Width > 0 {
		s.Width, s.Name = c.Page.Width, "Custom"
	}
	if c.Page.Height > 0 {
		s.Height, s.Name = c.Page.Height, "Custom"
	}
	if s.Width <= 0 || s.Height <= 0 {
		return page.Size{}, pberrors.New(pberrors.ErrCodeInvalidConfig, "page needs a size or a width and height")
	}
	return s, nil
}

// Validate checks every setting without reading stylesheets.
func (c *Config) Validate() error {
	if _, err := c.Size(); err != nil {
		return err
	}
	m := c.Margins
	if m.Top < 0 || m.Bottom < 0 || m.Inner < 0 || m.Outer < 0 {
		return pberrors.New(pberrors.ErrCodeInvalidConfig, "margins must not be negative")
	}
	if _, err := arrange.ParseLayout(c.Output.Layout); err != nil {
		return err
	}
	switch strings.ToLower(c.Output.Format) {
	case "", FormatPDF, FormatHTML, FormatPNG:
	default:
		return pberrors.New(pberrors.ErrCodeInvalidConfig, "unknown format %q (want pdf, html or png)", c.Output.Format)
	}
	switch api.OracleKind(c.Output.Oracle) {
	case "", api.OracleMetrics, api.OracleGrid:
	default:
		return pberrors.New(pberrors.ErrCodeInvalidConfig, "unknown oracle %q (want metrics or grid)", c.Output.Oracle)
	}
	if _, err := c.delay(); err != nil {
		return err
	}
	for i, r := range c.Rules {
		if _, err := r.Build(); err != nil {
			return pberrors.Wrap(pberrors.ErrCodeInvalidConfig, err, "rule %d", i+1)
		}
	}
	return nil
}

func (c *Config) delay() (time.Duration, error) {
	if c.Output.Delay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Output.Delay)
	if err != nil || d < 0 {
		return 0, pberrors.New(pberrors.ErrCodeInvalidConfig, "invalid delay %q", c.Output.Delay)
	}
	return d, nil
}

// Options converts the config into binder options. Stylesheet files are
// read here.
func (c *Config) Options() ([]api.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	size, _ := c.Size()
	layout, _ := arrange.ParseLayout(c.Output.Layout)
	delay, _ := c.delay()
	m := c.Margins

	opts := []api.Option{
		api.WithPageSize(size.Width, size.Height),
		api.WithMargins(m.Top, m.Bottom, m.Inner, m.Outer),
		api.WithLayout(layout),
		api.WithDelay(delay),
	}
	if c.Output.Oracle != "" {
		opts = append(opts, api.WithOracleKind(api.OracleKind(c.Output.Oracle)))
	}
	if c.Output.Title != "" {
		opts = append(opts, api.WithTitle(c.Output.Title))
	}
	if c.Output.Author != "" {
		opts = append(opts, api.WithAuthor(c.Output.Author))
	}
	for _, path := range c.Output.Stylesheets {
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, pberrors.Wrap(pberrors.ErrCodeNotFound, err, "stylesheet %s", path)
		}
		opts = append(opts, api.WithStylesheet(string(data)))
	}

	built := make([]*pagination.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rule, _ := r.Build()
		built = append(built, rule)
	}
	if len(built) > 0 {
		opts = append(opts, api.WithRules(built...))
	}
	return opts, nil
}

// Format returns the output format, pdf by default.
func (c *Config) Format() string {
	if c.Output.Format == "" {
		return FormatPDF
	}
	return strings.ToLower(c.Output.Format)
}

// Build creates the built-in rule the entry names.
func (r RuleConfig) Build() (*pagination.Rule, error) {
	needSelector := func() error {
		if strings.TrimSpace(r.Selector) == "" {
			return pberrors.New(pberrors.ErrCodeInvalidConfig, "%s rule needs a selector", r.Kind)
		}
		return nil
	}

	var rule *pagination.Rule
	switch strings.ToLower(r.Kind) {
	case "break-before":
		if err := needSelector(); err != nil {
			return nil, err
		}
		rule = rules.BreakBefore(r.Selector)
	case "full-page":
		if err := needSelector(); err != nil {
			return nil, err
		}
		rule = rules.FullPage(r.Selector)
	case "spread":
		if err := needSelector(); err != nil {
			return nil, err
		}
		rule = rules.Spread(r.Selector)
	case "footnote":
		if err := needSelector(); err != nil {
			return nil, err
		}
		var getter rules.TextFunc
		if r.Attr != "" {
			getter = rules.AttrText(r.Attr)
		}
		rule = rules.Footnote(r.Selector, getter)
	case "page-reference":
		if err := needSelector(); err != nil {
			return nil, err
		}
		rule = rules.PageReference(r.Selector)
	case "page-number":
		rule = rules.PageNumber()
	case "running-header":
		if err := needSelector(); err != nil {
			return nil, err
		}
		rule = rules.RunningHeader(r.Selector)
	default:
		return nil, pberrors.New(pberrors.ErrCodeUnknownRuleTarget, "unknown rule kind %q", r.Kind)
	}
	if r.Name != "" {
		rule.Name = r.Name
	}
	return rule, nil
}
