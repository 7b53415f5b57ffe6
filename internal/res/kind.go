package res

import (
	"bytes"
	"encoding/base64"
	"net/url"
	"path/filepath"
	"strings"

	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// ResourceType classifies a loaded resource.
type ResourceType int

const (
	ResourceTypeUnknown ResourceType = iota
	ResourceTypeImage
	ResourceTypeCSS
	ResourceTypeHTML
	ResourceTypeMarkdown
	ResourceTypeDocx
	ResourceTypeOther
)

// Resource is a fetched file, URL or data URL.
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// GetReader returns a fresh reader over the data.
func (r *Resource) GetReader() *bytes.Reader { return bytes.NewReader(r.Data) }

// GetString returns the data as text.
func (r *Resource) GetString() string { return string(r.Data) }

const (
	mimeDocx   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeBinary = "application/octet-stream"
)

type extInfo struct {
	mime string
	kind ResourceType
}

var byExt = map[string]extInfo{
	".jpg":      {"image/jpeg", ResourceTypeImage},
	".jpeg":     {"image/jpeg", ResourceTypeImage},
	".png":      {"image/png", ResourceTypeImage},
	".gif":      {"image/gif", ResourceTypeImage},
	".webp":     {"image/webp", ResourceTypeImage},
	".svg":      {"image/svg+xml", ResourceTypeImage},
	".bmp":      {"image/bmp", ResourceTypeImage},
	".tif":      {"image/tiff", ResourceTypeImage},
	".tiff":     {"image/tiff", ResourceTypeImage},
	".css":      {"text/css", ResourceTypeCSS},
	".html":     {"text/html", ResourceTypeHTML},
	".htm":      {"text/html", ResourceTypeHTML},
	".xhtml":    {"text/html", ResourceTypeHTML},
	".md":       {"text/markdown", ResourceTypeMarkdown},
	".markdown": {"text/markdown", ResourceTypeMarkdown},
	".docx":     {mimeDocx, ResourceTypeDocx},
}

func mimeForPath(path string) string {
	if info, ok := byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return info.mime
	}
	return mimeBinary
}

// kindOf trusts a recognised mime type first and falls back to the
// extension of path.
func kindOf(mime, path string) ResourceType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return ResourceTypeImage
	case mime == "text/css":
		return ResourceTypeCSS
	case mime == "text/html", mime == "application/xhtml+xml":
		return ResourceTypeHTML
	case mime == "text/markdown":
		return ResourceTypeMarkdown
	case mime == mimeDocx:
		return ResourceTypeDocx
	}
	if info, ok := byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return info.kind
	}
	return ResourceTypeOther
}

func newResource(u, mime string, data []byte, path string) *Resource {
	return &Resource{URL: u, Data: data, MimeType: mime, Type: kindOf(mime, path)}
}

// decodeDataURL reads an RFC 2397 URL such as data:image/png;base64,....
// The media type defaults to text/plain.
func decodeDataURL(u string) (*Resource, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, pberrors.New(pberrors.ErrCodeInvalidInput, "invalid data URL")
	}
	params := strings.Split(header, ";")
	mime := params[0]
	if mime == "" {
		mime = "text/plain"
	}
	encoded := false
	for _, p := range params[1:] {
		encoded = encoded || strings.EqualFold(strings.TrimSpace(p), "base64")
	}

	if encoded {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "invalid base64 data URL")
		}
		return newResource(u, mime, data, ""), nil
	}
	if text, err := url.PathUnescape(payload); err == nil {
		payload = text
	}
	return newResource(u, mime, []byte(payload), ""), nil
}
