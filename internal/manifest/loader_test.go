package manifest

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedManifest = `// DO NOT EDIT. This file is generated by Fresh.

import * as $0 from "./routes/_404.tsx";
import * as $1 from "./routes/about.tsx";
import * as $2 from "./routes/blog/[slug].tsx";
import * as $3 from "./routes/index.tsx";
import * as $$0 from "./islands/Counter.tsx";

const manifest = {
  routes: {
    "./routes/_404.tsx": $0,
    "./routes/about.tsx": $1,
    "./routes/blog/[slug].tsx": $2,
    "./routes/index.tsx": $3,
  },
  islands: {
    "./islands/Counter.tsx": $$0,
  },
  baseUrl: import.meta.url,
};

export default manifest;
`

func TestParseGenerated(t *testing.T) {
	t.Parallel()
	m, err := ParseGenerated(strings.NewReader(generatedManifest))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"./routes/_404.tsx",
		"./routes/about.tsx",
		"./routes/blog/[slug].tsx",
		"./routes/index.tsx",
	}, m.Paths())
}

func TestParseGenerated_NoRoutesBlock(t *testing.T) {
	t.Parallel()
	_, err := ParseGenerated(strings.NewReader(`export default {};`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseGenerated_Unterminated(t *testing.T) {
	t.Parallel()
	_, err := ParseGenerated(strings.NewReader(`const manifest = { routes: { "./routes/a.tsx": $0,`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeJSON_PreservesOrder(t *testing.T) {
	t.Parallel()
	doc := `{
	"routes": {
		"./routes/zeta.tsx": {},
		"./routes/alpha.tsx": {"config": {"routeOverride": "/a"}},
		"./routes/index.tsx": null
	},
	"islands": {"./islands/X.tsx": {}},
	"baseUrl": "file:///app/"
}`
	m, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"./routes/zeta.tsx", "./routes/alpha.tsx", "./routes/index.tsx"}, m.Paths())
	assert.Equal(t, "file:///app/", m.BaseURL)
	assert.Contains(t, m.Routes[1].Module, "config")
	assert.Nil(t, m.Routes[2].Module)
}

func TestDecodeJSON_RejectsNonObject(t *testing.T) {
	t.Parallel()
	_, err := DecodeJSON(strings.NewReader(`["./routes/index.tsx"]`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeYAML_PreservesOrder(t *testing.T) {
	t.Parallel()
	doc := `
baseUrl: https://example.com
routes:
  ./routes/zeta.tsx: {}
  ./routes/alpha.tsx:
    handler: true
  ./routes/index.tsx:
`
	m, err := DecodeYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"./routes/zeta.tsx", "./routes/alpha.tsx", "./routes/index.tsx"}, m.Paths())
	assert.Equal(t, "https://example.com", m.BaseURL)
	assert.Equal(t, true, m.Routes[1].Module["handler"])
}

func TestDecodeYAML_Empty(t *testing.T) {
	t.Parallel()
	m, err := DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Routes)
}

func TestFromDir(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	for _, f := range []string{
		"app/routes/index.tsx",
		"app/routes/about.tsx",
		"app/routes/_app.tsx",
		"app/routes/blog/index.tsx",
		"app/routes/blog/[slug].tsx",
		"app/routes/sitemap.xml.ts",
		"app/routes/README.md",
	} {
		require.NoError(t, afero.WriteFile(fsys, f, []byte("export default {}"), 0o644))
	}

	m, err := FromDir(fsys, "app/routes")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"./routes/_app.tsx",
		"./routes/about.tsx",
		"./routes/blog/[slug].tsx",
		"./routes/blog/index.tsx",
		"./routes/index.tsx",
		"./routes/sitemap.xml.ts",
	}, m.Paths())
}

func TestOpen(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "fresh.gen.ts", []byte(generatedManifest), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "manifest.json", []byte(`{"routes": {"./routes/index.tsx": {}}}`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "manifest.yml", []byte("routes:\n  ./routes/index.tsx: {}\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "routes/index.tsx", []byte(""), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "manifest.toml", []byte(""), 0o644))

	tests := []struct {
		path  string
		count int
	}{
		{"fresh.gen.ts", 4},
		{"manifest.json", 1},
		{"manifest.yml", 1},
		{"routes", 1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, err := Open(fsys, tt.path)
			require.NoError(t, err)
			assert.Len(t, m.Routes, tt.count)
		})
	}

	_, err := Open(fsys, "manifest.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Open(fsys, "missing.json")
	assert.Error(t, err)
}

func TestFromMap_SortsPaths(t *testing.T) {
	t.Parallel()
	m := FromMap(map[string]map[string]any{
		"./routes/b.tsx": {},
		"./routes/a.tsx": {},
	})
	assert.Equal(t, []string{"./routes/a.tsx", "./routes/b.tsx"}, m.Paths())
}

func TestPaths_NilManifest(t *testing.T) {
	t.Parallel()
	var m *Manifest
	assert.Nil(t, m.Paths())
}
