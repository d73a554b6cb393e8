package attendance

// DefaultCycle is the billing block length: the course repeats in
// 8-lesson blocks for display and payment purposes.
const DefaultCycle = 8

// NextOrdinal computes the lesson numbers for a student's next check-in.
// raw is the persisted ordinal: monotonically increasing, never reset, and
// the key payments are matched against. display folds raw into the
// repeating 1..cycle range used for user-facing lesson numbering.
func NextOrdinal(priorCount, cycle int) (raw, display int) {
	if cycle <= 0 {
		cycle = DefaultCycle
	}
	raw = priorCount + 1
	display = (raw-1)%cycle + 1
	return raw, display
}
