package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OverrideAction selects which sitemap mutation an Override performs.
type OverrideAction string

const (
	ActionAdd    OverrideAction = "add"
	ActionSet    OverrideAction = "set"
	ActionRemove OverrideAction = "remove"
)

var (
	ErrInvalidAction     = errors.New("invalid override action")
	ErrInvalidOverride   = errors.New("invalid override")
	ErrInvalidChangeFreq = errors.New("invalid changefreq")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidLastMod    = errors.New("invalid lastmod")
)

// lastModLayouts are the accepted lastmod formats, tried in order.
var lastModLayouts = []string{time.RFC3339, "2006-01-02"}

// Override is a manual add/set/remove applied on top of the manifest routes.
type Override struct {
	ID         uuid.UUID      `json:"id"`
	Action     OverrideAction `json:"action" mapstructure:"action"`
	Route      string         `json:"route" mapstructure:"route"`
	ChangeFreq ChangeFreq     `json:"changefreq,omitempty" mapstructure:"changefreq"`
	Priority   string         `json:"priority,omitempty" mapstructure:"priority"`
	LastMod    *time.Time     `json:"lastmod,omitempty" mapstructure:"lastmod"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewOverride creates a new override with generated UUID and timestamp
func NewOverride(action OverrideAction, route string) *Override {
	return &Override{
		ID:        uuid.New(),
		Action:    action,
		Route:     route,
		CreatedAt: time.Now(),
	}
}

// Props returns the route properties carried by the override.
func (o *Override) Props() RouteProps {
	return RouteProps{
		ChangeFreq: o.ChangeFreq,
		Priority:   o.Priority,
		LastMod:    o.LastMod,
	}
}

// Validate checks the fields a client can get wrong.
func (o *Override) Validate() error {
	switch o.Action {
	case ActionAdd, ActionSet, ActionRemove:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, o.Action)
	}

	if strings.TrimSpace(o.Route) == "" {
		return fmt.Errorf("%w: route is required", ErrInvalidOverride)
	}

	if o.ChangeFreq != "" && !o.ChangeFreq.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChangeFreq, o.ChangeFreq)
	}

	if o.Priority != "" {
		p, err := strconv.ParseFloat(o.Priority, 64)
		if err != nil || p < 0 || p > 1 {
			return fmt.Errorf("%w: %q must be between 0.0 and 1.0", ErrInvalidPriority, o.Priority)
		}
	}

	return nil
}

// UnmarshalJSON accepts lastmod either as RFC 3339 or as a plain
// 2006-01-02 date, the form sitemaps use.
func (o *Override) UnmarshalJSON(data []byte) error {
	type plain Override
	aux := struct {
		*plain
		LastMod string `json:"lastmod,omitempty"`
	}{plain: (*plain)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	o.LastMod = nil
	if aux.LastMod == "" {
		return nil
	}
	t, err := ParseLastMod(aux.LastMod)
	if err != nil {
		return err
	}
	o.LastMod = &t
	return nil
}

// ParseLastMod parses a lastmod value in any of the accepted layouts.
func ParseLastMod(s string) (time.Time, error) {
	for _, layout := range lastModLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidLastMod, s)
}
