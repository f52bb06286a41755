package domain

import (
	"encoding"
	"fmt"
)

// Phase is the coarse lifecycle stage of a card.
type Phase int

const (
	New      Phase = iota + 1 // never reviewed
	Learning                  // short fixed intervals after authoring or a lapse
	Review                    // ease-factor-driven interval growth
)

var (
	phaseNames  = [...]string{New: "new", Learning: "learning", Review: "review"}
	phaseByName = map[string]Phase{
		"new":      New,
		"learning": Learning,
		"review":   Review,
	}
)

var (
	_ fmt.Stringer             = Phase(0)
	_ encoding.TextMarshaler   = Phase(0)
	_ encoding.TextUnmarshaler = (*Phase)(nil)
)

// Valid reports whether p is one of the three defined phases.
func (p Phase) Valid() bool {
	return p >= New && p <= Review
}

// String returns "new", "learning" or "review". For invalid values it
// returns "Phase(n)".
func (p Phase) String() string {
	if p.Valid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("domain: invalid phase: %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	v, ok := phaseByName[string(text)]
	if !ok {
		return fmt.Errorf("domain: invalid phase: %q", text)
	}
	*p = v
	return nil
}
