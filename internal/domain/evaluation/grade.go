package evaluation

import (
	"fmt"
	"math"
)

// ResolveGrade returns the grade of the first band with MinRange <= score <= MaxRange.
// Scores that fall in a gap between bands, or outside all of them, have no grade.
func ResolveGrade(score float64, bands []GradeBand) (string, bool) {
	if math.IsNaN(score) {
		return "", false
	}
	for _, band := range bands {
		if score >= band.MinRange && score <= band.MaxRange {
			return band.Grade, true
		}
	}
	return "", false
}

type BandIssue struct {
	Index   int    `json:"index"`
	Grade   string `json:"grade"`
	Problem string `json:"problem"`
}

func (i BandIssue) String() string {
	return fmt.Sprintf("band %d (%s): %s", i.Index, i.Grade, i.Problem)
}

// ValidateGradeBands reports configuration problems that do not stop grade
// resolution. Overlaps are reported once per pair, against the earlier band.
func ValidateGradeBands(bands []GradeBand) []BandIssue {
	var issues []BandIssue
	for i, band := range bands {
		if band.Grade == "" {
			issues = append(issues, BandIssue{Index: i, Problem: "empty grade"})
		}
		if band.MinRange > band.MaxRange {
			issues = append(issues, BandIssue{Index: i, Grade: band.Grade, Problem: fmt.Sprintf("min %v above max %v", band.MinRange, band.MaxRange)})
			continue
		}
		for j := 0; j < i; j++ {
			prev := bands[j]
			if prev.MinRange > prev.MaxRange {
				continue
			}
			if band.MinRange <= prev.MaxRange && prev.MinRange <= band.MaxRange {
				issues = append(issues, BandIssue{Index: i, Grade: band.Grade, Problem: fmt.Sprintf("overlaps band %d (%s), band %d wins", j, prev.Grade, j)})
			}
		}
	}
	return issues
}
