// Package bins tracks the physical containers: fill levels, their derived
// status, and an append-only maintenance history mirroring the complaint
// lifecycle pattern.
package bins

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"campuscycle/internal/complaint"
	"campuscycle/internal/domain"
)

// Store is the bin persistence collaborator. Fill-level mutations and their
// history rows are atomic, same as complaints.
type Store interface {
	Create(ctx context.Context, b domain.Bin, h domain.BinHistoryEntry) (int64, error)
	Get(ctx context.Context, id int64) (domain.Bin, error)
	List(ctx context.Context) ([]domain.Bin, error)
	UpdateFill(ctx context.Context, id int64, fillLevel int, status domain.BinStatus, h domain.BinHistoryEntry) error
	History(ctx context.Context, id int64) ([]domain.BinHistoryEntry, error)
}

// Registry coordinates bin mutations.
type Registry struct {
	store Store
	now   func() time.Time
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store, now: time.Now}
}

// Register adds a new bin with its initial history entry.
func (r *Registry) Register(ctx context.Context, sess complaint.Session, b domain.Bin) (int64, error) {
	if !sess.Authenticated() {
		return 0, fmt.Errorf("%w: registering a bin requires a signed-in user", domain.ErrUnauthenticated)
	}
	if b.Capacity <= 0 {
		return 0, fmt.Errorf("%w: bin capacity must be positive, got %d", domain.ErrInvalidArgument, b.Capacity)
	}
	if b.FillLevel < 0 || b.FillLevel > b.Capacity {
		return 0, fmt.Errorf("%w: fill level %d outside [0, %d]", domain.ErrInvalidArgument, b.FillLevel, b.Capacity)
	}
	b.Status = domain.BinStatusFor(b.FillLevel, b.Capacity)
	b.LastUpdated = r.now().UTC()

	h := domain.BinHistoryEntry{
		FillLevel: b.FillLevel,
		Status:    b.Status,
		ActorID:   sess.UserID,
		CreatedAt: b.LastUpdated,
	}
	return r.store.Create(ctx, b, h)
}

// RecordFill sets a bin's fill level, recomputes its status, and appends a
// history entry, all atomically. Levels are clamped to [0, capacity].
func (r *Registry) RecordFill(ctx context.Context, sess complaint.Session, id int64, level int) (domain.Bin, error) {
	if !sess.Authenticated() {
		return domain.Bin{}, fmt.Errorf("%w: fill updates require a signed-in user", domain.ErrUnauthenticated)
	}
	b, err := r.store.Get(ctx, id)
	if err != nil {
		return domain.Bin{}, err
	}

	if level < 0 {
		level = 0
	}
	if level > b.Capacity {
		level = b.Capacity
	}
	status := domain.BinStatusFor(level, b.Capacity)
	now := r.now().UTC()

	h := domain.BinHistoryEntry{
		BinID:     id,
		FillLevel: level,
		Status:    status,
		ActorID:   sess.UserID,
		CreatedAt: now,
	}
	if err := r.store.UpdateFill(ctx, id, level, status, h); err != nil {
		return domain.Bin{}, err
	}

	b.FillLevel = level
	b.Status = status
	b.LastUpdated = now
	return b, nil
}

// List returns all bins.
func (r *Registry) List(ctx context.Context) ([]domain.Bin, error) {
	return r.store.List(ctx)
}

// History returns a bin's maintenance trail, oldest first.
func (r *Registry) History(ctx context.Context, id int64) ([]domain.BinHistoryEntry, error) {
	if _, err := r.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return r.store.History(ctx, id)
}

// Sweep scans all bins and logs a per-zone summary. It returns the number
// of full bins so the scheduler can alert on it.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}

	full := 0
	byZone := make(map[string][]domain.Bin)
	for _, b := range all {
		byZone[b.Zone] = append(byZone[b.Zone], b)
		if b.Status == domain.BinFull {
			full++
		}
	}
	for zone, group := range byZone {
		fullHere := 0
		for _, b := range group {
			if b.Status == domain.BinFull {
				fullHere++
			}
		}
		log.Infof("[Bins] Zone %s: %d bins, %d full", zone, len(group), fullHere)
	}
	if full > 0 {
		log.Warnf("[Bins] Sweep found %d full bins needing collection", full)
	}
	return full, nil
}
