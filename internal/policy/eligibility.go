package policy

import (
	"fmt"
	"math"
)

// Thresholds for guest → active promotion.
type Thresholds struct {
	MinAttendance          int
	MinApprovedSubmissions int
	MinQualityScore        float64
}

var DefaultThresholds = Thresholds{
	MinAttendance:          5,
	MinApprovedSubmissions: 3,
	MinQualityScore:        70.0,
}

// ActivityStats are the aggregates read from attendance and submissions.
type ActivityStats struct {
	AttendanceCount int
	SubmissionCount int
	QualityScore    float64 // mean over approved submissions, 0 when none
}

type CountCriterion struct {
	Actual   int  `json:"actual"`
	Required int  `json:"required"`
	Met      bool `json:"met"`
}

type ScoreCriterion struct {
	Actual   float64 `json:"actual"`
	Required float64 `json:"required"`
	Met      bool    `json:"met"`
}

type Criteria struct {
	Attendance   CountCriterion `json:"attendance"`
	Submissions  CountCriterion `json:"submissions"`
	QualityScore ScoreCriterion `json:"quality_score"`
}

// Eligibility is recomputed on every call and never stored.
type Eligibility struct {
	IsEligible bool     `json:"is_eligible"`
	Criteria   Criteria `json:"criteria"`
	Reasons    []string `json:"reasons"`
}

// Evaluate checks each threshold independently. Reasons has one entry per
// failed criterion in attendance, submissions, quality order.
func (t Thresholds) Evaluate(stats ActivityStats) Eligibility {
	c := Criteria{
		Attendance: CountCriterion{
			Actual:   stats.AttendanceCount,
			Required: t.MinAttendance,
			Met:      stats.AttendanceCount >= t.MinAttendance,
		},
		Submissions: CountCriterion{
			Actual:   stats.SubmissionCount,
			Required: t.MinApprovedSubmissions,
			Met:      stats.SubmissionCount >= t.MinApprovedSubmissions,
		},
		QualityScore: ScoreCriterion{
			Actual:   stats.QualityScore,
			Required: t.MinQualityScore,
			Met:      stats.QualityScore >= t.MinQualityScore,
		},
	}

	reasons := []string{}
	if !c.Attendance.Met {
		reasons = append(reasons, fmt.Sprintf("need %d more attended sessions", c.Attendance.Required-c.Attendance.Actual))
	}
	if !c.Submissions.Met {
		reasons = append(reasons, fmt.Sprintf("need %d more approved submissions", c.Submissions.Required-c.Submissions.Actual))
	}
	if !c.QualityScore.Met {
		reasons = append(reasons, fmt.Sprintf("need %.1f more quality score points", shortfall(c.QualityScore.Required, c.QualityScore.Actual)))
	}

	return Eligibility{
		IsEligible: c.Attendance.Met && c.Submissions.Met && c.QualityScore.Met,
		Criteria:   c,
		Reasons:    reasons,
	}
}

// shortfall rounds up to one decimal so a tiny gap never prints as 0.0.
// The epsilon absorbs float noise such as (70-60.3)*10 = 97.00000000000001.
func shortfall(required, actual float64) float64 {
	return math.Ceil((required-actual)*10-1e-9) / 10
}

// MeanScore is the arithmetic mean, 0 for an empty slice.
func MeanScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
