package domain

import (
	"testing"
	"time"
)

var day0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestPhaseRoundTrip(t *testing.T) {
	for _, p := range []Phase{New, Learning, Review} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("%v.MarshalText: %v", p, err)
		}
		var back Phase
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != p {
			t.Errorf("round trip: %v -> %q -> %v", p, text, back)
		}
	}
}

func TestPhaseInvalid(t *testing.T) {
	if _, err := Phase(0).MarshalText(); err == nil {
		t.Error("zero phase should not marshal")
	}
	var p Phase
	if err := p.UnmarshalText([]byte("suspended")); err == nil {
		t.Error("unknown phase name should not unmarshal")
	}
	if got := Phase(9).String(); got != "Phase(9)" {
		t.Errorf("String = %q", got)
	}
}

func TestCardDue(t *testing.T) {
	card := NewCard("abc", 0, "f", "b", "", day0)
	if !card.Due(day0) {
		t.Error("a new card should be due immediately")
	}
	if card.Due(day0.Add(-time.Minute)) {
		t.Error("a card is not due before its DueAt")
	}
}
