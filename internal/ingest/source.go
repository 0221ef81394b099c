package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

// Source supplies decoded dataset rows.
type Source interface {
	Name() string
	Rows(ctx context.Context) ([]rate.Row, error)
}

// FileSource reads a dataset from a local CSV file, or from the first CSV
// entry of a .zip archive (the ECB publishes its full history zipped).
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Rows(_ context.Context) ([]rate.Row, error) {
	if strings.EqualFold(filepath.Ext(s.Path), ".zip") {
		zr, err := zip.OpenReader(s.Path)
		if err != nil {
			return nil, fmt.Errorf("open dataset archive: %w", err)
		}
		defer func() { _ = zr.Close() }()
		return decodeArchive(zr.File, s.Path)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// HTTPSource fetches a dataset blob over HTTP(S), e.g. an object-store URL.
type HTTPSource struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithClient sets the HTTP client used for fetches.
func WithClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// NewHTTPSource creates a source for the given URL with the options applied.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Rows(ctx context.Context) ([]rate.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset fetch returned HTTP %d for %s", res.StatusCode, s.url)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(req.URL.Path), ".zip") ||
		strings.HasPrefix(res.Header.Get("Content-Type"), "application/zip") {
		zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
		if err != nil {
			return nil, fmt.Errorf("open dataset archive: %w", err)
		}
		return decodeArchive(zr.File, s.url)
	}
	return Decode(bytes.NewReader(body))
}

func decodeArchive(files []*zip.File, name string) ([]rate.Row, error) {
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in archive: %w", f.Name, err)
		}
		defer func() { _ = rc.Close() }()
		return Decode(rc)
	}
	return nil, fmt.Errorf("no csv entry in %s", name)
}

// Load fetches every source concurrently and merges their rows, later sources
// overriding earlier ones per (date, currency). A single failing source fails
// the whole load; partial datasets are never returned.
func Load(ctx context.Context, sources ...Source) ([]rate.Row, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no dataset sources configured")
	}

	results := make([][]rate.Row, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			rows, err := src.Rows(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(sources) == 1 {
		return results[0], nil
	}

	merged := make(map[time.Time]map[string]rate.Value)
	for _, rows := range results {
		for _, row := range rows {
			m := merged[row.Date]
			if m == nil {
				m = make(map[string]rate.Value, len(row.Rates))
				merged[row.Date] = m
			}
			for code, v := range row.Rates {
				m[code] = v
			}
		}
	}

	out := make([]rate.Row, 0, len(merged))
	for d, m := range merged {
		out = append(out, rate.Row{Date: d, Rates: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
