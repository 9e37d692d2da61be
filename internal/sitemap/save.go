package sitemap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Save writes the sitemap to staticDir/sitemap.xml, creating missing
// directories and replacing any existing file. Failures are logged as
// warnings and not returned.
func (c *Context) Save(staticDir string) {
	outPath := filepath.Join(staticDir, FileName)
	if err := c.write(outPath); err != nil {
		c.logger.Warn().Str("path", outPath).Msg(err.Error())
		return
	}
	c.logger.Debug().Str("path", outPath).Int("routes", len(c.routes)).Msg("Sitemap saved")
}

func (c *Context) write(outPath string) error {
	content := c.Generate()

	if err := ensureFile(c.fs, outPath); err != nil {
		return err
	}
	if err := afero.WriteFile(c.fs, outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}

// ensureFile creates p and its parent directories if they do not exist.
func ensureFile(fs afero.Fs, p string) error {
	info, err := fs.Stat(p)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("ensure %s: is a directory", p)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("ensure %s: %w", p, err)
	}

	if err := fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	f, err := fs.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", p, err)
	}
	return f.Close()
}
