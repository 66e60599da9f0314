// Package eventstore persists an append-only log of build events.
package eventstore

import (
	"context"
	"time"
)

// Store is an append-only event log. Reads return events in append order
// unless noted otherwise.
type Store interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)
	// GetRange matches events whose timestamp lies in [start, end].
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)
	// Recent returns up to limit events of eventType, newest first.
	// An empty eventType matches every event.
	Recent(ctx context.Context, eventType string, limit int) ([]Event, error)
	Close() error
}
