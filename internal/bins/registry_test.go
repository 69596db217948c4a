package bins_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"campuscycle/internal/bins"
	"campuscycle/internal/complaint"
	"campuscycle/internal/domain"
	"campuscycle/internal/storage/sqlite"
)

var staff = complaint.Session{UserID: "S001", Username: "bob"}

func newRegistry(t *testing.T) *bins.Registry {
	t.Helper()
	db, err := sqlite.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return bins.NewRegistry(sqlite.NewBinStore(db))
}

func registerBin(t *testing.T, r *bins.Registry, zone string, capacity, fill int) int64 {
	t.Helper()
	id, err := r.Register(context.Background(), staff, domain.Bin{
		Location:  domain.Coordinate{Lat: 1, Lng: 2},
		Capacity:  capacity,
		FillLevel: fill,
		Zone:      zone,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return id
}

func TestRegisterDerivesStatus(t *testing.T) {
	r := newRegistry(t)
	id := registerBin(t, r, "north", 100, 80)

	all, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != id {
		t.Fatalf("unexpected bins: %+v", all)
	}
	if all[0].Status != domain.BinFull {
		t.Errorf("status = %s, want full at 80/100", all[0].Status)
	}

	hist, err := r.History(context.Background(), id)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(hist) != 1 {
		t.Errorf("history has %d rows, want 1", len(hist))
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	if _, err := r.Register(ctx, complaint.Session{}, domain.Bin{Capacity: 10}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("anonymous register: got %v, want ErrUnauthenticated", err)
	}
	if _, err := r.Register(ctx, staff, domain.Bin{Capacity: 0}); err == nil {
		t.Error("zero capacity accepted")
	}
	if _, err := r.Register(ctx, staff, domain.Bin{Capacity: 10, FillLevel: 11}); err == nil {
		t.Error("overfull bin accepted")
	}
}

func TestRecordFillTransitions(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	id := registerBin(t, r, "north", 100, 0)

	cases := []struct {
		level int
		want  domain.BinStatus
	}{
		{0, domain.BinEmpty},
		{50, domain.BinHalf},
		{100, domain.BinFull},
	}
	for _, c := range cases {
		b, err := r.RecordFill(ctx, staff, id, c.level)
		if err != nil {
			t.Fatalf("RecordFill(%d) failed: %v", c.level, err)
		}
		if b.Status != c.want {
			t.Errorf("fill %d: status = %s, want %s", c.level, b.Status, c.want)
		}
	}

	// One history row per mutation, plus the registration entry.
	hist, _ := r.History(ctx, id)
	if len(hist) != 4 {
		t.Errorf("history has %d rows, want 4", len(hist))
	}
}

func TestRecordFillClamps(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	id := registerBin(t, r, "south", 50, 0)

	b, err := r.RecordFill(ctx, staff, id, 200)
	if err != nil {
		t.Fatalf("RecordFill failed: %v", err)
	}
	if b.FillLevel != 50 || b.Status != domain.BinFull {
		t.Errorf("overfull clamp: level=%d status=%s", b.FillLevel, b.Status)
	}

	b, err = r.RecordFill(ctx, staff, id, -5)
	if err != nil {
		t.Fatalf("RecordFill failed: %v", err)
	}
	if b.FillLevel != 0 || b.Status != domain.BinEmpty {
		t.Errorf("negative clamp: level=%d status=%s", b.FillLevel, b.Status)
	}
}

func TestRecordFillErrors(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	if _, err := r.RecordFill(ctx, staff, 999, 10); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown bin: got %v, want ErrNotFound", err)
	}
	id := registerBin(t, r, "east", 100, 0)
	if _, err := r.RecordFill(ctx, complaint.Session{}, id, 10); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("anonymous fill: got %v, want ErrUnauthenticated", err)
	}
}

func TestSweepCountsFullBins(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	registerBin(t, r, "north", 100, 90)
	registerBin(t, r, "north", 100, 10)
	registerBin(t, r, "south", 100, 100)

	full, err := r.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if full != 2 {
		t.Errorf("Sweep counted %d full bins, want 2", full)
	}
}
