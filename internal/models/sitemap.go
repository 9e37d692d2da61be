// internal/models/sitemap.go
package models

import "encoding/xml"

const (
	SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	XHTMLNamespace   = "http://www.w3.org/1999/xhtml"
)

// Sitemap represents the structure of an XML sitemap.
type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNs   string   `xml:"xmlns,attr,omitempty"`
	XHTML   string   `xml:"xmlns:xhtml,attr,omitempty"`
	URLs    []URL    `xml:"url"`
}

// URL represents a single URL entry in the sitemap.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// NewSitemap returns an empty urlset carrying the sitemap and xhtml namespaces.
func NewSitemap() *Sitemap {
	return &Sitemap{
		XMLNs: SitemapNamespace,
		XHTML: XHTMLNamespace,
	}
}

type rawText struct {
	Text string `xml:",innerxml"`
}

// MarshalXML writes Loc as given, without escaping; the other fields are
// encoded normally.
func (u URL) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(struct {
		Loc        rawText `xml:"loc"`
		LastMod    string  `xml:"lastmod,omitempty"`
		ChangeFreq string  `xml:"changefreq,omitempty"`
		Priority   string  `xml:"priority,omitempty"`
	}{rawText{u.Loc}, u.LastMod, u.ChangeFreq, u.Priority}, start)
}
