package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `const manifest = {
  routes: {
    "./routes/_app.tsx": $0,
    "./routes/about.tsx": $1,
    "./routes/blog/[slug].tsx": $2,
    "./routes/index.tsx": $3,
  },
  islands: {},
  baseUrl: import.meta.url,
};
`

func setupCLI(t *testing.T, configBody string) string {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "fresh.gen.ts", []byte(testManifest), 0o644))
	prev := appFs
	appFs = fs
	t.Cleanup(func() {
		appFs = prev
		cfgFile = ""
		verbose = false
	})

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(configBody), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	p := setupCLI(t, `
site:
  url: https://example.com/
sitemap:
  overrides:
    - action: add
      route: contact
      priority: "0.5"
`)

	out, err := run(t, "generate", "--config", p)
	require.NoError(t, err)

	assert.Contains(t, out, "<loc>https://example.com/about</loc>")
	assert.Contains(t, out, "<loc>https://example.com/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/contact/</loc>")
	assert.Contains(t, out, "<priority>0.5</priority>")
	assert.NotContains(t, out, "_app")
	assert.NotContains(t, out, "[slug]")
}

func TestGenerateCommand_URLFlag(t *testing.T) {
	p := setupCLI(t, "log:\n  level: error\n")

	out, err := run(t, "generate", "--config", p, "--url", "https://flag.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "<loc>https://flag.example.com/about</loc>")
}

func TestGenerateCommand_MissingURL(t *testing.T) {
	p := setupCLI(t, "log:\n  level: error\n")

	_, err := run(t, "generate", "--config", p)
	assert.Error(t, err)
}

func TestSaveCommand(t *testing.T) {
	p := setupCLI(t, "site:\n  url: https://example.com\n")

	_, err := run(t, "save", "--config", p, "--static", "public")
	require.NoError(t, err)

	content, err := afero.ReadFile(appFs, filepath.Join("public", "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "<loc>https://example.com/about</loc>")
}

func TestInspectCommand(t *testing.T) {
	p := setupCLI(t, "site:\n  url: https://example.com\n")
	_, err := run(t, "save", "--config", p)
	require.NoError(t, err)

	out, err := run(t, "inspect", filepath.Join("static", "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Total URLs found: 2")
	assert.Contains(t, out, "https://example.com/about")
}
