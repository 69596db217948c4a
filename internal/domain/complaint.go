package domain

import "time"

// Status is the lifecycle state of a complaint. Transitions only move
// forward: pending -> in_progress -> resolved, with a direct
// pending -> resolved escalation allowed. Resolved is absorbing.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is a known complaint status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusResolved
	case StatusInProgress:
		return next == StatusResolved
	}
	return false
}

// Priority of a complaint. Set once at submission.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Coordinate is a WGS84 latitude/longitude pair. A complaint whose location
// is unknown carries a nil *Coordinate, never a zero-valued one.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Complaint is a durable user-submitted report, optionally annotated with
// the classifier's verdict and the device location at submission time.
type Complaint struct {
	ID            int64
	SubmitterID   string
	Submitter     string // display name, e.g. email local part
	Description   string
	Label         string  // classifier label, empty when no image was attached
	Confidence    float64 // softmax probability of Label in percent (0-100)
	Location      *Coordinate
	Status        Status
	Priority      Priority
	AssignedStaff string
	CreatedAt     time.Time
}

// ClassificationSummary renders the label+confidence pair the way the
// status screen shows it, or "" when the complaint has no classification.
func (c Complaint) ClassificationSummary() string {
	if c.Label == "" {
		return ""
	}
	return c.Label + " (" + formatPercent(c.Confidence) + "%)"
}

// HistoryEntry is one immutable row of a complaint's audit trail. An entry
// is written for every status change, including the initial pending entry
// at creation.
type HistoryEntry struct {
	ID          int64
	ComplaintID int64
	Status      Status
	ActorID     string
	CreatedAt   time.Time
}
