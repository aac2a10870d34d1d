package history

import (
	"context"
	"time"

	"codeberg.org/mutker/rogctl/internal/profile"
	"github.com/google/uuid"
)

// Recorder receives applied hardware changes.
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
	Close() error
}

// Reader lists recorded changes, newest first.
type Reader interface {
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Repository defines the interface for history storage
type Repository interface {
	Store(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Action identifies the operation that produced an entry.
type Action string

const (
	ActionProfileApplied Action = "profile_applied"
	ActionProfileSet     Action = "profile_set"
	ActionChargeLimitSet Action = "charge_limit_set"
)

// Entry is one applied change.
type Entry struct {
	ID          uuid.UUID
	Timestamp   time.Time
	Action      Action
	Profile     profile.Profile
	FanPath     string
	Mechanism   string
	ChargeLimit uint8
}

// NewEntry stamps a new entry with an ID and the current time.
func NewEntry(action Action) *Entry {
	return &Entry{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Action:    action,
	}
}
