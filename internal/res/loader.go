// Package res loads book sources and the resources they reference from
// files, http(s) URLs and data URLs.
package res

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// maxConcurrentLoads bounds LoadAll.
const maxConcurrentLoads = 4

// Loader fetches resources relative to a base path or URL and keeps every
// result for the life of the loader.
type Loader struct {
	base   string
	dirs   []string
	client *http.Client
	logger *log.Logger

	mu    sync.RWMutex
	cache map[string]*Resource
}

// NewLoader returns a loader resolving against base, which may be a file
// path, an http(s) URL or empty.
func NewLoader(base string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		cache:  make(map[string]*Resource),
	}
}

// AddSearchPath adds a directory tried by file name when a local path does
// not exist.
func (l *Loader) AddSearchPath(dir string) {
	l.dirs = append(l.dirs, dir)
}

func (l *Loader) cached(ref string) (*Resource, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.cache[ref]
	return r, ok
}

func (l *Loader) remember(ref string, r *Resource) {
	l.mu.Lock()
	l.cache[ref] = r
	l.mu.Unlock()
}

// Load returns the resource ref names.
func (l *Loader) Load(ctx context.Context, ref string) (*Resource, error) {
	if r, ok := l.cached(ref); ok {
		return r, nil
	}
	r, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	l.remember(ref, r)
	l.logger.Debug("loaded resource", "url", r.URL, "mime", r.MimeType, "bytes", len(r.Data))
	return r, nil
}

func (l *Loader) fetch(ctx context.Context, ref string) (*Resource, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURL(ref)
	}
	target, err := l.resolve(ref)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "resolve %s", ref)
	}
	if isRemote(target) {
		return l.get(ctx, target)
	}
	return l.readFile(target)
}

// LoadAll loads every URL concurrently and returns the resources in the
// order given. The first failure cancels the rest.
func (l *Loader) LoadAll(ctx context.Context, refs []string) ([]*Resource, error) {
	out := make([]*Resource, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, ref := range refs {
		g.Go(func() error {
			r, err := l.Load(ctx, ref)
			out[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadImage loads ref and requires an image.
func (l *Loader) LoadImage(ref string) (*Resource, error) {
	return l.loadKind(context.Background(), ref, ResourceTypeImage, "an image")
}

// LoadCSS loads ref and requires a stylesheet.
func (l *Loader) LoadCSS(ctx context.Context, ref string) (*Resource, error) {
	return l.loadKind(ctx, ref, ResourceTypeCSS, "CSS")
}

func (l *Loader) loadKind(ctx context.Context, ref string, kind ResourceType, what string) (*Resource, error) {
	r, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Type != kind {
		return nil, pberrors.New(pberrors.ErrCodeInvalidInput, "resource is not %s: %s", what, ref)
	}
	return r, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolve joins a relative ref to the directory of a file base, or
// references it against a URL base.
func (l *Loader) resolve(ref string) (string, error) {
	switch {
	case isRemote(ref), filepath.IsAbs(ref), l.base == "":
		return ref, nil
	case !isRemote(l.base):
		return filepath.Join(filepath.Dir(l.base), ref), nil
	}
	base, err := url.Parse(l.base)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (l *Loader) get(ctx context.Context, target string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "create request")
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeNetwork, err, "fetch %s", target)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, pberrors.New(pberrors.ErrCodeNotFound, "resource not found: %s", target)
	default:
		return nil, pberrors.New(pberrors.ErrCodeNetwork, "fetch %s: %s", target, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeNetwork, err, "read %s", target)
	}

	path := target
	if u, err := url.Parse(target); err == nil {
		path = u.Path
	}
	mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	mime = strings.TrimSpace(mime)
	if mime == "" || mime == "text/plain" || mime == mimeBinary {
		mime = mimeForPath(path)
	}
	return newResource(target, mime, data, path), nil
}

// readFile reads path, then each search directory by base name.
func (l *Loader) readFile(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return newResource(path, mimeForPath(path), data, path), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "read %s", path)
	}
	for _, dir := range l.dirs {
		alt := filepath.Join(dir, filepath.Base(path))
		if data, err := os.ReadFile(alt); err == nil {
			return newResource(alt, mimeForPath(alt), data, alt), nil
		}
	}
	return nil, pberrors.New(pberrors.ErrCodeNotFound, "resource not found: %s", path)
}
