package domain

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusResolved, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusPending, false},
		{StatusResolved, StatusPending, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusResolved, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusInProgress, StatusResolved} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Status("done").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestBinStatusFor(t *testing.T) {
	cases := []struct {
		fill, capacity int
		want           BinStatus
	}{
		{0, 100, BinEmpty},
		{24, 100, BinEmpty},
		{25, 100, BinHalf},
		{50, 100, BinHalf},
		{74, 100, BinHalf},
		{75, 100, BinFull},
		{100, 100, BinFull},
		{10, 0, BinFull}, // zero capacity surfaces in sweeps
	}
	for _, c := range cases {
		if got := BinStatusFor(c.fill, c.capacity); got != c.want {
			t.Errorf("BinStatusFor(%d, %d) = %s, want %s", c.fill, c.capacity, got, c.want)
		}
	}
}

func TestClassificationSummary(t *testing.T) {
	c := Complaint{Label: "plastic", Confidence: 92.5}
	if got, want := c.ClassificationSummary(), "plastic (92.5%)"; got != want {
		t.Errorf("ClassificationSummary() = %q, want %q", got, want)
	}
	if got := (Complaint{}).ClassificationSummary(); got != "" {
		t.Errorf("summary of unclassified complaint = %q, want empty", got)
	}
}
