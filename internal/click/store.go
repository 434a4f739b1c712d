package click

import (
	"context"
	"time"
)

// Store is the durable click log. Implementations must be safe for
// concurrent use.
type Store interface {
	// Insert appends one event. The event's ID is storage-assigned.
	Insert(ctx context.Context, ev Event) error

	// Count returns the total number of stored events.
	Count(ctx context.Context) (int64, error)

	// StatsBySlug returns click counts grouped by slug, ordered by
	// count descending.
	StatsBySlug(ctx context.Context) ([]SlugCount, error)

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)

	// OnDay returns all events whose timestamp falls on the same UTC
	// calendar day as day, ordered by insertion id ascending.
	OnDay(ctx context.Context, day time.Time) ([]Event, error)
}
