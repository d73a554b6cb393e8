package grade

import "time"

// Indicator bands a score/total ratio for display.
type Indicator string

const (
	Excellent        Indicator = "excellent"
	VeryGood         Indicator = "very-good"
	Good             Indicator = "good"
	Fair             Indicator = "fair"
	NeedsImprovement Indicator = "needs-improvement"
)

// Grade is one recorded exam result.
type Grade struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	ExamName    string    `json:"exam_name"`
	Score       float64   `json:"score"`
	TotalScore  float64   `json:"total_score"`
	Lesson      int       `json:"lesson_number"`
	Group       string    `json:"group"`
	Indicator   Indicator `json:"performance_indicator"`
	Date        time.Time `json:"date"`
}

// IndicatorFor bands a result. A non-positive total defaults to the
// lowest band rather than dividing by zero.
func IndicatorFor(score, total float64) Indicator {
	if total <= 0 {
		return NeedsImprovement
	}
	pct := score / total * 100
	switch {
	case pct >= 90:
		return Excellent
	case pct >= 80:
		return VeryGood
	case pct >= 70:
		return Good
	case pct >= 60:
		return Fair
	default:
		return NeedsImprovement
	}
}
