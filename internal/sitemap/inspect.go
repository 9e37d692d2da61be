package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/afero"

	"github.com/scsmash3r/fresh-seo/internal/models"
)

// Parse reads a urlset document.
func Parse(r io.Reader) (*models.Sitemap, error) {
	var doc models.Sitemap
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}
	return &doc, nil
}

// Load reads a sitemap from an http(s) URL or from a file on fs.
func Load(ctx context.Context, client *http.Client, fs afero.Fs, src string) (*models.Sitemap, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetch(ctx, client, src)
	}

	f, err := fs.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open sitemap: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func fetch(ctx context.Context, client *http.Client, url string) (*models.Sitemap, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch sitemap: unexpected status %d", resp.StatusCode)
	}

	return Parse(resp.Body)
}
