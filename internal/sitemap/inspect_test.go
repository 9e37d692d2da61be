package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scsmash3r/fresh-seo/internal/manifest"
)

func TestParse_ReadsGeneratedSitemap(t *testing.T) {
	t.Parallel()
	ctx := newContext("./routes/index.tsx", "./routes/about.tsx").Add("/blog")

	doc, err := Parse(strings.NewReader(ctx.Generate()))
	require.NoError(t, err)
	require.Len(t, doc.URLs, 3)
	assert.Equal(t, "https://example.com/", doc.URLs[0].Loc)
	assert.Equal(t, "https://example.com/about", doc.URLs[1].Loc)
	assert.Equal(t, "https://example.com/blog/", doc.URLs[2].Loc)
	assert.Equal(t, "2024-03-05", doc.URLs[2].LastMod)
	assert.Equal(t, "daily", doc.URLs[2].ChangeFreq)
	assert.Equal(t, "0.8", doc.URLs[2].Priority)
}

func TestParse_InvalidXML(t *testing.T) {
	t.Parallel()
	_, err := Parse(strings.NewReader(`<urlset><url><loc>https://example.com</loc></url></urlset`))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	ctx := New(baseURL, manifest.FromPaths("./routes/about.tsx"), WithFs(fs), WithClock(fixedClock))
	ctx.Save("static")

	doc, err := Load(context.Background(), nil, fs, "static/sitemap.xml")
	require.NoError(t, err)
	require.Len(t, doc.URLs, 1)
	assert.Equal(t, "https://example.com/about", doc.URLs[0].Loc)

	_, err = Load(context.Background(), nil, fs, "static/missing.xml")
	assert.Error(t, err)
}

func TestLoad_URL(t *testing.T) {
	t.Parallel()
	ctx := newContext("./routes/about.tsx")
	srv := httptest.NewServer(ctx)
	defer srv.Close()

	doc, err := Load(context.Background(), srv.Client(), afero.NewMemMapFs(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	require.Len(t, doc.URLs, 1)
}

func TestLoad_URLStatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Load(context.Background(), srv.Client(), afero.NewMemMapFs(), srv.URL+"/sitemap.xml")
	assert.Error(t, err)
}
