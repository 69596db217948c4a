// Package complaint owns the lifecycle of complaint records: creation,
// association with a classification result and location, status
// transitions, and history logging.
package complaint

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"campuscycle/internal/domain"
	"campuscycle/internal/geo"
	"campuscycle/internal/vision"
)

// Session is the explicit authentication context for record operations.
// There is no ambient signed-in user; every call states who is acting.
type Session struct {
	UserID   string
	Username string
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool { return s.UserID != "" }

// DisplayName resolves the name shown on the record, falling back to the
// local part when the username is an email address.
func (s Session) DisplayName() string {
	name := s.Username
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	if name == "" {
		name = "anonymous"
	}
	return name
}

// SubmitRequest carries everything a new complaint needs. Classification
// and Location are optional; a nil Location asks the geo provider.
type SubmitRequest struct {
	Description    string
	Classification *vision.Result
	Location       *domain.Coordinate
	Priority       domain.Priority
}

// Manager coordinates the store, the geo provider, and the lifecycle state
// machine.
type Manager struct {
	store Store
	geo   geo.Provider
	now   func() time.Time
}

func NewManager(store Store, geoProvider geo.Provider) *Manager {
	return &Manager{store: store, geo: geoProvider, now: time.Now}
}

// Submit creates a complaint in status pending together with its initial
// history entry. The two writes are atomic; no complaint exists without
// its first history row.
func (m *Manager) Submit(ctx context.Context, sess Session, req SubmitRequest) (int64, error) {
	if !sess.Authenticated() {
		return 0, fmt.Errorf("%w: submit requires a signed-in user", domain.ErrUnauthenticated)
	}
	if strings.TrimSpace(req.Description) == "" {
		return 0, fmt.Errorf("%w: complaint description must not be empty", domain.ErrInvalidArgument)
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return 0, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidArgument, priority)
	}

	c := domain.Complaint{
		SubmitterID: sess.UserID,
		Submitter:   sess.DisplayName(),
		Description: strings.TrimSpace(req.Description),
		Status:      domain.StatusPending,
		Priority:    priority,
		Location:    req.Location,
		CreatedAt:   m.now().UTC(),
	}
	if req.Classification != nil {
		c.Label = req.Classification.Label
		c.Confidence = req.Classification.Confidence
	}
	if c.Location == nil && m.geo != nil {
		if coord, ok := m.geo.Current(); ok {
			c.Location = &coord
		}
		// No fix means the location stays absent. Recording (0,0) here
		// would invent a point in the Gulf of Guinea.
	}

	h := domain.HistoryEntry{
		Status:    domain.StatusPending,
		ActorID:   sess.UserID,
		CreatedAt: c.CreatedAt,
	}
	id, err := m.store.Create(ctx, c, h)
	if err != nil {
		return 0, fmt.Errorf("create complaint: %w", err)
	}
	log.Infof("[Complaints] Submitted #%d by %s", id, c.Submitter)
	return id, nil
}

// Transition moves a complaint along the lifecycle state machine and
// appends the matching history entry atomically. Illegal edges fail with
// domain.ErrInvalidTransition and leave no trace in the history.
func (m *Manager) Transition(ctx context.Context, sess Session, id int64, next domain.Status) error {
	if !sess.Authenticated() {
		return fmt.Errorf("%w: transition requires a signed-in user", domain.ErrUnauthenticated)
	}
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, next)
	}

	current, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next)
	}

	// Taking a complaint into progress assigns the acting staff member.
	assigned := current.AssignedStaff
	if next == domain.StatusInProgress {
		assigned = sess.UserID
	}

	h := domain.HistoryEntry{
		ComplaintID: id,
		Status:      next,
		ActorID:     sess.UserID,
		CreatedAt:   m.now().UTC(),
	}
	if err := m.store.UpdateStatus(ctx, id, current.Status, assigned, h); err != nil {
		return err
	}
	log.Infof("[Complaints] #%d %s -> %s by %s", id, current.Status, next, sess.UserID)
	return nil
}

// List returns a snapshot of complaints, newest first. Fresh calls are
// required to observe later updates; there is no subscription.
func (m *Manager) List(ctx context.Context, f Filter) ([]domain.Complaint, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status filter %q", domain.ErrInvalidArgument, f.Status)
	}
	return m.store.List(ctx, f)
}

// Get returns one complaint.
func (m *Manager) Get(ctx context.Context, id int64) (domain.Complaint, error) {
	return m.store.Get(ctx, id)
}

// History returns a complaint's audit trail, oldest first.
func (m *Manager) History(ctx context.Context, id int64) ([]domain.HistoryEntry, error) {
	if _, err := m.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return m.store.History(ctx, id)
}
