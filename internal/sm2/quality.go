package sm2

import "fmt"

// Quality is a recall grade on the SM-2 scale: 0 is a total blackout,
// 3 is correct with serious difficulty (the pass boundary), 5 is perfect
// recall.
type Quality int

// Valid reports whether q lies in the closed range [0, 5].
func (q Quality) Valid() bool {
	return q >= 0 && q <= 5
}

// Passing reports whether q counts as a successful recall.
func (q Quality) Passing() bool {
	return q >= PassThreshold
}

// Normalize validates a raw integer grade. Out-of-range values fail with
// ErrInvalidQuality rather than being clamped, so UI bugs surface instead
// of silently skewing the schedule.
func Normalize(raw int) (Quality, error) {
	q := Quality(raw)
	if !q.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuality, raw)
	}
	return q, nil
}

// Grade is the four-bucket answer scale most review UIs expose.
type Grade int

const (
	Again Grade = iota + 1 // failed to recall
	Hard                   // recalled with serious difficulty
	Good                   // recalled with some hesitation
	Easy                   // perfect recall
)

var (
	gradeNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}

	// gradeQuality maps UI buckets onto the 0-5 scale. The mapping follows
	// common SM-2 derivatives; hosts wanting finer control can call
	// Normalize with a raw 0-5 value instead.
	gradeQuality = [...]Quality{Again: 0, Hard: 3, Good: 4, Easy: 5}
)

// Valid reports whether g is one of the four defined buckets.
func (g Grade) Valid() bool {
	return g >= Again && g <= Easy
}

// String returns "again", "hard", "good" or "easy".
func (g Grade) String() string {
	if g.Valid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// Quality returns the 0-5 quality the bucket maps to. Calling it on an
// invalid Grade returns 0, which grades as a lapse.
func (g Grade) Quality() Quality {
	if !g.Valid() {
		return 0
	}
	return gradeQuality[g]
}

// ParseGrade converts a bucket name, as posted by the review form, into a
// Grade.
func ParseGrade(name string) (Grade, error) {
	for g := Again; g <= Easy; g++ {
		if gradeNames[g] == name {
			return g, nil
		}
	}
	return 0, fmt.Errorf("sm2: unknown grade %q", name)
}
