package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// routeExtensions are the file types Fresh treats as route modules.
var routeExtensions = map[string]bool{
	".tsx": true,
	".ts":  true,
	".jsx": true,
	".js":  true,
	".mjs": true,
}

var (
	generatedRoutesBlock = regexp.MustCompile(`routes\s*:\s*\{`)
	generatedRouteKey    = regexp.MustCompile(`["']([^"']+)["']\s*:`)
)

// Open loads a manifest from p. Directories are walked as a routes tree,
// ".json", ".yaml" and ".yml" files are decoded as documents with a
// top-level "routes" mapping, and ".ts"/".js" files are parsed as a
// generated fresh.gen.ts.
func Open(fsys afero.Fs, p string) (*Manifest, error) {
	info, err := fsys.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest %s: %w", p, err)
	}
	if info.IsDir() {
		return FromDir(fsys, p)
	}

	f, err := fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", p, err)
	}
	defer f.Close()

	var m *Manifest
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		m, err = DecodeJSON(f)
	case ".yaml", ".yml":
		m, err = DecodeYAML(f)
	case ".ts", ".js":
		m, err = ParseGenerated(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", p, err)
	}
	return m, nil
}

// DecodeJSON reads {"routes": {...}, "baseUrl": "..."} keeping key order.
func DecodeJSON(r io.Reader) (*Manifest, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	m := &Manifest{}
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return nil, err
		}

		switch key {
		case "routes":
			if err := decodeJSONRoutes(dec, m); err != nil {
				return nil, err
			}
		case "baseUrl":
			var base any
			if err := dec.Decode(&base); err != nil {
				return nil, fmt.Errorf("decode baseUrl: %w", err)
			}
			if s, ok := base.(string); ok {
				m.BaseURL = s
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeJSONRoutes(dec *json.Decoder, m *Manifest) error {
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("routes: %w", err)
	}
	for dec.More() {
		p, err := nextKey(dec)
		if err != nil {
			return err
		}
		var module any
		if err := dec.Decode(&module); err != nil {
			return fmt.Errorf("decode route %s: %w", p, err)
		}
		desc, _ := module.(map[string]any)
		m.Routes = append(m.Routes, Entry{Path: p, Module: desc})
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrUnsupportedFormat, want, tok)
	}
	return nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("decode manifest: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected object key, got %v", ErrUnsupportedFormat, tok)
	}
	return key, nil
}

// DecodeYAML reads the YAML form of the manifest keeping key order.
func DecodeYAML(r io.Reader) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrUnsupportedFormat)
	}

	m := &Manifest{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "routes":
			if val.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%w: routes must be a mapping", ErrUnsupportedFormat)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				entry := Entry{Path: val.Content[j].Value}
				if mod := val.Content[j+1]; mod.Kind == yaml.MappingNode {
					if err := mod.Decode(&entry.Module); err != nil {
						return nil, fmt.Errorf("decode route %s: %w", entry.Path, err)
					}
				}
				m.Routes = append(m.Routes, entry)
			}
		case "baseUrl":
			m.BaseURL = val.Value
		}
	}
	return m, nil
}

// ParseGenerated extracts the route keys from a generated fresh.gen.ts:
//
//	const manifest = {
//	  routes: {
//	    "./routes/index.tsx": $0,
//	  },
//	  islands: { ... },
//	};
func ParseGenerated(r io.Reader) (*Manifest, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	loc := generatedRoutesBlock.FindIndex(src)
	if loc == nil {
		return nil, fmt.Errorf("%w: no routes block", ErrUnsupportedFormat)
	}

	body := src[loc[1]:]
	depth := 1
	end := -1
	for i, c := range body {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated routes block", ErrUnsupportedFormat)
	}

	m := &Manifest{}
	for _, match := range generatedRouteKey.FindAllSubmatch(body[:end], -1) {
		m.Routes = append(m.Routes, Entry{Path: string(match[1])})
	}
	return m, nil
}

// FromDir walks a routes directory and builds the manifest Fresh would
// generate for it: "./routes/<relative path>" keys in lexical order.
func FromDir(fsys afero.Fs, root string) (*Manifest, error) {
	m := &Manifest{}
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !routeExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		m.Routes = append(m.Routes, Entry{Path: RoutesPrefix + "/" + filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk routes directory %s: %w", root, err)
	}
	return m, nil
}
