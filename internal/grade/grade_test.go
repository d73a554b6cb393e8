package grade

import "testing"

func TestIndicatorFor(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		total float64
		want  Indicator
	}{
		{"perfect score", 100, 100, Excellent},
		{"exactly ninety percent", 90, 100, Excellent},
		{"just under ninety", 89.9, 100, VeryGood},
		{"exactly eighty percent", 80, 100, VeryGood},
		{"exactly seventy percent", 70, 100, Good},
		{"exactly sixty percent", 60, 100, Fair},
		{"just under sixty", 59, 100, NeedsImprovement},
		{"zero score", 0, 100, NeedsImprovement},
		{"non-hundred total", 45, 50, Excellent},
		{"zero total is never a pass", 50, 0, NeedsImprovement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IndicatorFor(tt.score, tt.total); got != tt.want {
				t.Errorf("IndicatorFor(%v, %v) = %q, want %q", tt.score, tt.total, got, tt.want)
			}
		})
	}
}
