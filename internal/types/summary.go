package types

// Attendance bands used by the dashboard summary.
const (
	BandLow       = "low"
	BandGood      = "good"
	BandExcellent = "excellent"

	// LowAttendanceThreshold is the first percentage that is no longer low.
	LowAttendanceThreshold = 75.0
	// ExcellentAttendanceThreshold is the first excellent percentage.
	ExcellentAttendanceThreshold = 90.0
)

// AttendanceBand classifies an attendance percentage.
func AttendanceBand(attendance float64) string {
	switch {
	case attendance < LowAttendanceThreshold:
		return BandLow
	case attendance >= ExcellentAttendanceThreshold:
		return BandExcellent
	default:
		return BandGood
	}
}

// Summary is the dashboard view over a set of students.
type Summary struct {
	Total             int            `json:"total"`
	GradeDistribution map[string]int `json:"grade_distribution"`
	AverageAge        float64        `json:"average_age"`
	AttendanceBands   map[string]int `json:"attendance_bands"`
	LowAttendance     int            `json:"low_attendance"`
}

// Summarize computes a Summary. Every grade and band appears in the maps,
// zero-filled, and AverageAge is 0 for an empty input.
func Summarize(students []*Student) Summary {
	sum := Summary{
		Total:             len(students),
		GradeDistribution: make(map[string]int, len(Grades)),
		AttendanceBands: map[string]int{
			BandLow:       0,
			BandGood:      0,
			BandExcellent: 0,
		},
	}
	for _, g := range Grades {
		sum.GradeDistribution[g] = 0
	}

	ageTotal := 0
	for _, s := range students {
		sum.GradeDistribution[s.Grade]++
		sum.AttendanceBands[AttendanceBand(s.Attendance)]++
		ageTotal += s.Age
	}

	if len(students) > 0 {
		sum.AverageAge = float64(ageTotal) / float64(len(students))
	}
	sum.LowAttendance = sum.AttendanceBands[BandLow]

	return sum
}
