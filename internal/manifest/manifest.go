// Package manifest reads the route table a Fresh build produces.
//
// A manifest maps route source files ("./routes/blog/index.tsx") to their
// module descriptors. Entry order is preserved from the source so the
// sitemap lists routes in the same order the framework does.
package manifest

import (
	"errors"
	"sort"
)

// ErrUnsupportedFormat is returned when a manifest file type is not recognised.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// RoutesPrefix is the key prefix Fresh uses for route files.
const RoutesPrefix = "./routes"

// Entry is one route file of the manifest. Module holds whatever descriptor
// the source provided and may be nil.
type Entry struct {
	Path   string         `json:"path"`
	Module map[string]any `json:"module,omitempty"`
}

type Manifest struct {
	Routes  []Entry `json:"routes"`
	BaseURL string  `json:"baseUrl,omitempty"`
}

// FromMap builds a manifest from a literal map. Go maps are unordered, so
// the entries are sorted by path.
func FromMap(routes map[string]map[string]any) *Manifest {
	paths := make([]string, 0, len(routes))
	for p := range routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	m := &Manifest{Routes: make([]Entry, 0, len(paths))}
	for _, p := range paths {
		m.Routes = append(m.Routes, Entry{Path: p, Module: routes[p]})
	}
	return m
}

// FromPaths builds a manifest keeping the given order.
func FromPaths(paths ...string) *Manifest {
	m := &Manifest{Routes: make([]Entry, 0, len(paths))}
	for _, p := range paths {
		m.Routes = append(m.Routes, Entry{Path: p})
	}
	return m
}

// Paths returns the route file paths in manifest order.
func (m *Manifest) Paths() []string {
	if m == nil {
		return nil
	}
	paths := make([]string, 0, len(m.Routes))
	for _, e := range m.Routes {
		paths = append(paths, e.Path)
	}
	return paths
}
