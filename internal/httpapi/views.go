package httpapi

import (
	"time"

	"campuscycle/internal/domain"
)

type coordinateView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type complaintView struct {
	ID             int64           `json:"id"`
	SubmitterID    string          `json:"submitter_id"`
	Submitter      string          `json:"submitter"`
	Description    string          `json:"description"`
	Classification string          `json:"classification,omitempty"`
	Location       *coordinateView `json:"location,omitempty"`
	Status         domain.Status   `json:"status"`
	Priority       domain.Priority `json:"priority"`
	AssignedStaff  string          `json:"assigned_staff,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toComplaintView(c domain.Complaint) complaintView {
	v := complaintView{
		ID:             c.ID,
		SubmitterID:    c.SubmitterID,
		Submitter:      c.Submitter,
		Description:    c.Description,
		Classification: c.ClassificationSummary(),
		Status:         c.Status,
		Priority:       c.Priority,
		AssignedStaff:  c.AssignedStaff,
		CreatedAt:      c.CreatedAt,
	}
	if c.Location != nil {
		v.Location = &coordinateView{Lat: c.Location.Lat, Lng: c.Location.Lng}
	}
	return v
}

func toComplaintViews(list []domain.Complaint) []complaintView {
	out := make([]complaintView, 0, len(list))
	for _, c := range list {
		out = append(out, toComplaintView(c))
	}
	return out
}

type historyView struct {
	Status    domain.Status `json:"status"`
	ActorID   string        `json:"actor_id"`
	CreatedAt time.Time     `json:"created_at"`
}

func toHistoryViews(hist []domain.HistoryEntry) []historyView {
	out := make([]historyView, 0, len(hist))
	for _, h := range hist {
		out = append(out, historyView{Status: h.Status, ActorID: h.ActorID, CreatedAt: h.CreatedAt})
	}
	return out
}
