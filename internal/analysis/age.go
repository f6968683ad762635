package analysis

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerYear = 365.25 * 24 * 60 * 60

	AdvisoryReplace     = "Tire is over 7 years old; replacement is strongly recommended regardless of tread depth."
	AdvisoryApproaching = "Tire is over 5 years old; it is approaching the recommended replacement window."
)

// AgeFromDOT converts a manufacture week and four-digit year into elapsed
// years at now, rounded to 2 decimals. It returns nil when either value
// does not parse or week is outside 1..53.
func AgeFromDOT(week, year string, now time.Time) *float64 {
	w, err := strconv.Atoi(strings.TrimSpace(week))
	if err != nil || w < 1 || w > 53 {
		return nil
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1000 || y > 9999 {
		return nil
	}
	made := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (w-1)*7)
	elapsed := float64(now.Unix()-made.Unix()) / secondsPerYear
	age := math.Round(elapsed*100) / 100
	return &age
}

// AgeAdvisory returns the advisory for age, or nil when none applies.
func AgeAdvisory(age *float64) *string {
	switch {
	case age == nil:
		return nil
	case *age > 7:
		return strPtr(AdvisoryReplace)
	case *age > 5:
		return strPtr(AdvisoryApproaching)
	default:
		return nil
	}
}

// ResolveContext merges the model's context with the locally computed age.
// Model-supplied values win; computed values only fill gaps.
func ResolveContext(model *ContextInfo, dot *DOT, now time.Time) ContextInfo {
	out := ContextInfo{CommonFitment: []string{}}
	if model != nil {
		out = *model
		if out.CommonFitment == nil {
			out.CommonFitment = []string{}
		}
	}
	if out.AgeYears == nil && dot != nil && dot.Week != nil && dot.Year != nil {
		out.AgeYears = AgeFromDOT(*dot.Week, *dot.Year, now)
	}
	if out.AgeAdvisory == nil {
		out.AgeAdvisory = AgeAdvisory(out.AgeYears)
	}
	return out
}
