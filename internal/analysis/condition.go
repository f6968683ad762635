package analysis

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	defaultConditionLabel = "Limited data"
	defaultConfidence     = 0.6
	minConfidence         = 0.5
	maxConfidence         = 0.98
	maxLabelLength        = 40
	maxReasons            = 3
)

// DefaultCondition is used when the model gave no condition. Missing
// information is never reported as green.
func DefaultCondition() Condition {
	return Condition{
		Status:     StatusAmber,
		Label:      defaultConditionLabel,
		Reasons:    []string{},
		Confidence: defaultConfidence,
		Disclaimer: CanonicalDisclaimer,
	}
}

// NormalizeCondition bounds a model-supplied condition to the documented
// ranges, or returns DefaultCondition when in is nil. Values already in
// range are kept as given.
func NormalizeCondition(in *ConditionInput) Condition {
	if in == nil {
		return DefaultCondition()
	}
	out := Condition{
		Status:     strings.ToLower(strings.TrimSpace(in.Status)),
		Label:      truncateRunes(in.Label, maxLabelLength),
		Reasons:    make([]string, 0, maxReasons),
		Confidence: defaultConfidence,
		Disclaimer: in.Disclaimer,
	}
	switch out.Status {
	case StatusGreen, StatusAmber, StatusRed:
	default:
		out.Status = StatusAmber
	}
	if strings.TrimSpace(out.Label) == "" {
		out.Label = defaultConditionLabel
	}
	for _, r := range in.Reasons {
		if len(out.Reasons) == maxReasons {
			break
		}
		if strings.TrimSpace(r) != "" {
			out.Reasons = append(out.Reasons, r)
		}
	}
	if in.Confidence != nil && !math.IsNaN(*in.Confidence) {
		out.Confidence = min(max(*in.Confidence, minConfidence), maxConfidence)
	}
	if strings.TrimSpace(out.Disclaimer) == "" {
		out.Disclaimer = CanonicalDisclaimer
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
