package models

import (
	"time"
)

// ChangeFreq is the sitemap protocol hint for how often a page changes.
type ChangeFreq string

const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

// Valid reports whether f is one of the protocol values.
func (f ChangeFreq) Valid() bool {
	switch f {
	case ChangeFreqAlways, ChangeFreqHourly, ChangeFreqDaily, ChangeFreqWeekly,
		ChangeFreqMonthly, ChangeFreqYearly, ChangeFreqNever:
		return true
	}
	return false
}

// Route is a single sitemap entry. Empty ChangeFreq/Priority and a nil
// LastMod mean "unset"; defaults are applied when the sitemap is generated.
type Route struct {
	PathName   string     `json:"pathName"`
	ChangeFreq ChangeFreq `json:"changefreq,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	LastMod    *time.Time `json:"lastmod,omitempty"`
}

// RouteProps are the optional per-route overrides accepted by Add and Set.
type RouteProps struct {
	ChangeFreq ChangeFreq `json:"changefreq,omitempty" mapstructure:"changefreq"`
	Priority   string     `json:"priority,omitempty" mapstructure:"priority"`
	LastMod    *time.Time `json:"lastmod,omitempty" mapstructure:"lastmod"`
}
