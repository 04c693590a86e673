package asset

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lvillar/layoutpdf"
)

// DefaultMaxBytes caps the size of a fetched source.
const DefaultMaxBytes = 32 << 20

// SourceLoader resolves data URIs, http(s) URLs and file paths.
type SourceLoader struct {
	client   *http.Client
	baseDir  string
	maxBytes int64
}

// LoaderOption configures a SourceLoader.
type LoaderOption func(*SourceLoader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *SourceLoader) { l.client = c }
}

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) LoaderOption {
	return func(l *SourceLoader) { l.baseDir = dir }
}

// WithMaxBytes limits the size of any single source.
func WithMaxBytes(n int64) LoaderOption {
	return func(l *SourceLoader) { l.maxBytes = n }
}

// NewLoader creates a SourceLoader.
func NewLoader(opts ...LoaderOption) *SourceLoader {
	l := &SourceLoader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches src and decodes it.
func (l *SourceLoader) Load(ctx context.Context, src string) (*Asset, error) {
	data, err := l.Fetch(ctx, src)
	if err != nil {
		return Fail(src, err), err
	}
	a, err := Decode(data)
	if err != nil {
		err = fmt.Errorf("asset: decoding %s: %w", describe(src), err)
		return Fail(src, err), err
	}
	a.Source = src
	return a, nil
}

// Fetch returns the raw bytes behind src.
func (l *SourceLoader) Fetch(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, layoutpdf.ErrNoSource
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetchHTTP(ctx, src)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("asset: parsing %s: %w", src, err)
		}
		return l.readFile(u.Path)
	}
	return l.readFile(src)
}

func (l *SourceLoader) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("asset: building request for %s: %w", src, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asset: fetching %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, layoutpdf.Errorf("asset.Fetch", layoutpdf.ErrNotFound, "%s: %s", src, resp.Status)
	}
	return l.readLimited(resp.Body, src)
}

func (l *SourceLoader) readFile(path string) ([]byte, error) {
	if l.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, layoutpdf.Errorf("asset.Fetch", layoutpdf.ErrNotFound, "%s", path)
		}
		return nil, fmt.Errorf("asset: opening %s: %w", path, err)
	}
	defer f.Close()
	return l.readLimited(f, path)
}

func (l *SourceLoader) readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("asset: reading %s: %w", name, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, layoutpdf.Errorf("asset.Fetch", layoutpdf.ErrInvalidParam, "%s exceeds %d bytes", name, l.maxBytes)
	}
	return data, nil
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>.
func decodeDataURI(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, layoutpdf.Errorf("asset.Fetch", layoutpdf.ErrDecode, "malformed data URI")
	}
	meta, payload := src[len("data:"):comma], src[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, layoutpdf.Errorf("asset.Fetch", layoutpdf.ErrDecode, "data URI: %v", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, layoutpdf.Errorf("asset.Fetch", layoutpdf.ErrDecode, "data URI: %v", err)
	}
	return []byte(s), nil
}

// describe shortens data URIs for error messages.
func describe(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 40 {
		return src[:40] + "..."
	}
	return src
}
