package complaint

import (
	"context"

	"campuscycle/internal/domain"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	SubmitterID string
	Status      domain.Status
}

// Store is the persistence collaborator. Implementations must make
// Create and UpdateStatus atomic with their paired history write: a
// complaint without its history row (or the reverse) must never be
// observable.
type Store interface {
	// Create persists the complaint together with its initial history entry
	// and returns the assigned id.
	Create(ctx context.Context, c domain.Complaint, h domain.HistoryEntry) (int64, error)

	// Get returns the complaint or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (domain.Complaint, error)

	// List returns a point-in-time snapshot ordered by creation time,
	// newest first.
	List(ctx context.Context, f Filter) ([]domain.Complaint, error)

	// UpdateStatus moves the complaint from expected to h.Status and appends
	// h in the same transaction. It returns domain.ErrNotFound for unknown
	// ids and domain.ErrInvalidTransition when the stored status no longer
	// equals expected (a concurrent transition won).
	UpdateStatus(ctx context.Context, id int64, expected domain.Status, assignedStaff string, h domain.HistoryEntry) error

	// History returns the append-only audit trail, oldest first.
	History(ctx context.Context, id int64) ([]domain.HistoryEntry, error)
}
