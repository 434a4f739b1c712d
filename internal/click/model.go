// Package click holds the click event model, its durable store, and the
// best-effort recorder used by the redirect path.
package click

import "time"

// Event is one recorded redirect. Events are append-only: written once,
// never mutated or deleted by this service.
type Event struct {
	ID          int64     `json:"id"`
	Time        time.Time `json:"ts"`
	Slug        string    `json:"slug"`
	Destination string    `json:"destination"`
	ClientAddr  string    `json:"client_addr"`
	UserAgent   string    `json:"user_agent"`
}

// SlugCount is the aggregate click count for one slug.
type SlugCount struct {
	Slug   string `json:"slug"`
	Clicks int64  `json:"clicks"`
}
