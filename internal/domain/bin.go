package domain

import (
	"strconv"
	"time"
)

// BinStatus is derived from the fill ratio, never stored independently of it.
type BinStatus string

const (
	BinEmpty BinStatus = "empty"
	BinHalf  BinStatus = "half"
	BinFull  BinStatus = "full"
)

// Fill ratio thresholds for the derived bin status.
const (
	binFullRatio = 0.75
	binHalfRatio = 0.25
)

// BinStatusFor maps a fill level against a capacity to the derived status.
// Capacity of zero is treated as a full bin so it surfaces in sweeps.
func BinStatusFor(fillLevel, capacity int) BinStatus {
	if capacity <= 0 {
		return BinFull
	}
	ratio := float64(fillLevel) / float64(capacity)
	switch {
	case ratio >= binFullRatio:
		return BinFull
	case ratio >= binHalfRatio:
		return BinHalf
	}
	return BinEmpty
}

// Bin is a tracked physical container. Mutations go through the bin
// registry, which keeps Status consistent with FillLevel and appends a
// history row per change.
type Bin struct {
	ID          int64
	Location    Coordinate
	Capacity    int
	FillLevel   int
	Status      BinStatus
	Zone        string
	LastUpdated time.Time
}

// BinHistoryEntry mirrors the complaint history pattern for bins.
type BinHistoryEntry struct {
	ID        int64
	BinID     int64
	FillLevel int
	Status    BinStatus
	ActorID   string
	CreatedAt time.Time
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
