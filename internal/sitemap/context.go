// Package sitemap builds a sitemap.xml document from a route manifest.
//
// A Context starts from the public, static routes of a manifest and can be
// adjusted with Add, Set and Remove before the document is generated,
// served over HTTP or written to a static directory. A Context is not safe
// for concurrent use.
package sitemap

import (
	"encoding/xml"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/scsmash3r/fresh-seo/internal/glob"
	"github.com/scsmash3r/fresh-seo/internal/manifest"
	"github.com/scsmash3r/fresh-seo/internal/models"
	"github.com/scsmash3r/fresh-seo/internal/utils"
)

const (
	// FileName is the name Save writes under the static directory.
	FileName = "sitemap.xml"

	DefaultChangeFreq = models.ChangeFreqDaily
	DefaultPriority   = "0.8"

	dateLayout = "2006-01-02"
)

// DefaultIgnore lists route names that never enter the sitemap from the manifest.
var DefaultIgnore = []string{"sitemap.xml"}

var dynamicSegment = regexp.MustCompile(`\[.+\]`)

// Context holds the route list of one sitemap. It is not safe for
// concurrent use.
type Context struct {
	url    string
	ignore []string
	routes []models.Route

	fs     afero.Fs
	now    func() time.Time
	logger *utils.Logger
}

// Option configures a Context in New.
type Option func(*Context)

// WithLogger sets the logger used to report Save failures.
func WithLogger(l *utils.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l.WithComponent("sitemap")
		}
	}
}

// WithFs sets the filesystem Save writes to.
func WithFs(fs afero.Fs) Option {
	return func(c *Context) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithClock sets the source of the default lastmod date.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIgnore replaces the default ignore list.
func WithIgnore(names ...string) Option {
	return func(c *Context) {
		c.ignore = append([]string(nil), names...)
	}
}

// New returns a Context seeded with the public routes of m. Routes with a
// dynamic "[param]" segment, files whose name starts with "_" and names on
// the ignore list are left out.
func New(url string, m *manifest.Manifest, opts ...Option) *Context {
	c := &Context{
		url:    url,
		ignore: append([]string(nil), DefaultIgnore...),
		fs:     afero.NewOsFs(),
		now:    time.Now,
		logger: utils.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, p := range m.Paths() {
		if !c.public(p) {
			continue
		}
		c.routes = append(c.routes, models.Route{PathName: pathName(p)})
	}
	return c
}

func (c *Context) public(p string) bool {
	file := path.Base(p)
	name := strings.Replace(file, path.Ext(file), "", 1)

	if dynamicSegment.MatchString(p) || strings.HasPrefix(name, "_") {
		return false
	}
	for _, ignored := range c.ignore {
		if name == ignored {
			return false
		}
	}
	return true
}

// pathName turns a manifest key into a URL path. Each substitution removes
// the first occurrence only, so "./routes/blog/index.tsx" becomes "/blog/".
func pathName(p string) string {
	p = strings.Replace(p, path.Ext(p), "", 1)
	p = strings.Replace(p, manifest.RoutesPrefix, "", 1)
	return strings.Replace(p, "index", "", 1)
}

// normalize wraps route in exactly one leading and one trailing slash.
func normalize(route string) string {
	route = strings.TrimPrefix(route, "/")
	route = strings.TrimSuffix(route, "/")
	if route == "" {
		return "/"
	}
	return "/" + route + "/"
}

// URL returns the base URL the context was created with.
func (c *Context) URL() string {
	return c.url
}

// Routes returns a copy of the current route list.
func (c *Context) Routes() []models.Route {
	out := make([]models.Route, len(c.routes))
	copy(out, c.routes)
	return out
}

// Add appends route. Existing entries with the same path are kept.
func (c *Context) Add(route string, props ...models.RouteProps) *Context {
	r := models.Route{PathName: normalize(route)}
	if len(props) > 0 {
		p := props[0]
		r.ChangeFreq = p.ChangeFreq
		r.Priority = p.Priority
		r.LastMod = p.LastMod
	}
	c.routes = append(c.routes, r)
	return c
}

// Set merges props into the first route whose path equals the normalized
// route. Fields left empty in props keep their current value.
func (c *Context) Set(route string, props ...models.RouteProps) *Context {
	if len(props) == 0 {
		return c
	}
	p := props[0]
	target := normalize(route)

	for i := range c.routes {
		if c.routes[i].PathName != target {
			continue
		}
		r := &c.routes[i]
		if p.ChangeFreq != "" {
			r.ChangeFreq = p.ChangeFreq
		}
		if p.Priority != "" {
			r.Priority = p.Priority
		}
		if p.LastMod != nil {
			r.LastMod = p.LastMod
		}
		break
	}
	return c
}

// Remove drops every route whose absolute URL matches the glob pattern
// url+route, e.g. Remove("/blog/*").
func (c *Context) Remove(route string) *Context {
	candidates := make([]string, 0, len(c.routes))
	for _, r := range c.routes {
		candidates = append(candidates, c.url+r.PathName)
	}

	matched := glob.FilterFiles(candidates, glob.Options{
		Match:  c.url + route,
		Ignore: c.ignore,
	})
	if len(matched) == 0 {
		return c
	}

	drop := make(map[string]struct{}, len(matched))
	for _, m := range matched {
		drop[m] = struct{}{}
	}

	kept := c.routes[:0]
	for _, r := range c.routes {
		if _, ok := drop[c.url+r.PathName]; ok {
			continue
		}
		kept = append(kept, r)
	}
	c.routes = kept
	return c
}

// Apply performs the mutation described by o.
func (c *Context) Apply(o models.Override) *Context {
	switch o.Action {
	case models.ActionAdd:
		return c.Add(o.Route, o.Props())
	case models.ActionSet:
		return c.Set(o.Route, o.Props())
	case models.ActionRemove:
		return c.Remove(o.Route)
	}
	c.logger.Debug().Str("action", string(o.Action)).Str("route", o.Route).Msg("Ignoring override with unknown action")
	return c
}

// Sitemap returns the urlset document for the current routes with defaults
// filled in.
func (c *Context) Sitemap() *models.Sitemap {
	doc := models.NewSitemap()
	today := c.now()

	doc.URLs = make([]models.URL, 0, len(c.routes))
	for _, r := range c.routes {
		lastmod := today
		if r.LastMod != nil {
			lastmod = *r.LastMod
		}
		changefreq := r.ChangeFreq
		if changefreq == "" {
			changefreq = DefaultChangeFreq
		}
		priority := r.Priority
		if priority == "" {
			priority = DefaultPriority
		}

		doc.URLs = append(doc.URLs, models.URL{
			Loc:        c.url + r.PathName,
			LastMod:    lastmod.Format(dateLayout),
			ChangeFreq: string(changefreq),
			Priority:   priority,
		})
	}
	return doc
}

// Generate renders the sitemap as an XML document.
func (c *Context) Generate() string {
	out, err := xml.MarshalIndent(c.Sitemap(), "", "  ")
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to marshal sitemap")
		return xml.Header
	}
	return xml.Header + string(out)
}

// Render writes the generated sitemap as an application/xml response.
func (c *Context) Render(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(c.Generate())); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to write sitemap response")
	}
}

// ServeHTTP makes a Context usable as an http.Handler; it calls Render.
func (c *Context) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	c.Render(w)
}
