// Package geo supplies the best-known device coordinate at submission time.
// The provider is an external collaborator; the core only consumes a
// coordinate pair plus an explicit "not yet available" signal.
package geo

import "campuscycle/internal/domain"

// Provider reports the current device coordinate. ok is false while no fix
// is available; callers must record the location as absent in that case,
// never as (0,0).
type Provider interface {
	Current() (coord domain.Coordinate, ok bool)
}

// Fixed always reports the same coordinate. Useful for kiosks installed at
// a known spot and for tests.
type Fixed struct {
	Coord domain.Coordinate
}

func (f Fixed) Current() (domain.Coordinate, bool) { return f.Coord, true }

// Unavailable never has a fix.
type Unavailable struct{}

func (Unavailable) Current() (domain.Coordinate, bool) { return domain.Coordinate{}, false }
