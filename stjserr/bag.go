package stjserr

import (
	"errors"
	"fmt"
	"sort"

	"fortio.org/safecast"

	"martianoff/stjs/internal/source"
)

// DefaultMaxDiagnostics caps the diagnostics kept for a single unit.
const DefaultMaxDiagnostics = 200

// Bag collects the diagnostics of one unit.
// It is not safe for concurrent use; every unit owns its bag.
type Bag struct {
	items   []error
	max     uint16
	dropped int
}

// NewBag creates a bag holding at most max errors. Values outside the
// uint16 range fall back to DefaultMaxDiagnostics.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil || limit == 0 {
		limit = DefaultMaxDiagnostics
	}
	return &Bag{max: limit}
}

// Add records err. It returns false once the cap is reached.
func (b *Bag) Add(err error) bool {
	if err == nil {
		return true
	}
	if len(b.items) >= int(b.max) {
		b.dropped++
		return false
	}
	b.items = append(b.items, err)
	return true
}

// AddAll records every error in errs.
func (b *Bag) AddAll(errs []error) {
	for _, err := range errs {
		b.Add(err)
	}
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Dropped returns how many errors were rejected by the cap.
func (b *Bag) Dropped() int {
	return b.dropped
}

func (b *Bag) HasErrors() bool {
	return len(b.items) > 0
}

// Items returns the collected errors. The slice is owned by the bag.
func (b *Bag) Items() []error {
	return b.items
}

// Sort orders positioned errors by file, line and column. Errors without a
// position keep their relative order and sort last.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		pi, iok := positionOf(b.items[i])
		pj, jok := positionOf(b.items[j])
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return pi.Before(pj)
	})
}

// Dedup drops repeated (category, position, message) triples.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	kept := b.items[:0]
	for _, err := range b.items {
		key := err.Error()
		if se, ok := err.(StjsError); ok {
			key = fmt.Sprintf("%s|%s", se.Type(), key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, err)
	}
	b.items = kept
}

// AddFailure records the diagnostics of a UnitFailure, carrying over its
// dropped count. Any other error is recorded as is.
func (b *Bag) AddFailure(err error) {
	var uf *UnitFailure
	if !errors.As(err, &uf) {
		b.Add(err)
		return
	}
	b.AddAll(uf.Errors)
	b.dropped += uf.Dropped
}

// Err returns nil for an empty bag, otherwise a UnitFailure for unit.
func (b *Bag) Err(unit string) error {
	if len(b.items) == 0 {
		return nil
	}
	errs := make([]error, len(b.items))
	copy(errs, b.items)
	return &UnitFailure{Unit: unit, Errors: errs, Dropped: b.dropped}
}

func positionOf(err error) (source.Position, bool) {
	if p, ok := err.(Positioned); ok {
		pos := p.Position()
		return pos, pos.IsValid()
	}
	return source.Position{}, false
}
