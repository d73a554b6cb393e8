package attendance

import "testing"

func TestNextOrdinal(t *testing.T) {
	tests := []struct {
		name        string
		priorCount  int
		cycle       int
		wantRaw     int
		wantDisplay int
	}{
		{"first lesson", 0, 8, 1, 1},
		{"mid cycle", 3, 8, 4, 4},
		{"last of first cycle", 7, 8, 8, 8},
		{"first of second cycle", 8, 8, 9, 1},
		{"deep into third cycle", 18, 8, 19, 3},
		{"short cycle wraps", 4, 4, 5, 1},
		{"zero cycle falls back to default", 8, 0, 9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, display := NextOrdinal(tt.priorCount, tt.cycle)
			if raw != tt.wantRaw || display != tt.wantDisplay {
				t.Errorf("NextOrdinal(%d, %d) = (%d, %d), want (%d, %d)",
					tt.priorCount, tt.cycle, raw, display, tt.wantRaw, tt.wantDisplay)
			}
		})
	}
}
