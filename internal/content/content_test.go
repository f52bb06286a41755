package content

import "testing"

func TestNormalize(t *testing.T) {
	e := Entry{
		Front: "  What is the ease factor? \r\n",
		Back:  "A multiplier controlling interval growth.",
		Hint:  "Defaults to 2.5",
	}
	want := "what is the ease factor?\na multiplier controlling interval growth.\ndefaults to 2.5"
	if got := Normalize(e); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Entry{Front: "front", Back: "back"}
		b := Entry{Front: "front", Back: "back"}
		if Hash(a) != Hash(b) {
			t.Error("identical entries should hash identically")
		}
	})

	t.Run("normalization-invariant", func(t *testing.T) {
		a := Entry{Front: "  What is SM-2? ", Back: "A scheduling algorithm."}
		b := Entry{Front: "What Is SM-2?", Back: "A scheduling algorithm."}
		if Hash(a) != Hash(b) {
			t.Error("cosmetic edits should not change the hash")
		}
	})

	t.Run("distinct entries differ", func(t *testing.T) {
		a := Entry{Front: "card 1"}
		b := Entry{Front: "card 2"}
		if Hash(a) == Hash(b) {
			t.Error("different entries should hash differently")
		}
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		a := Entry{Front: "ab", Back: "c"}
		b := Entry{Front: "a", Back: "bc"}
		if Hash(a) == Hash(b) {
			t.Error("field contents must not bleed into each other")
		}
	})
}
