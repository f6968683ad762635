package analysis

import (
	"regexp"
	"strings"
)

// sidewallSizePattern matches a size followed by load index and speed
// rating, e.g. "205/55R16 91V".
var sidewallSizePattern = regexp.MustCompile(`(\d{3}/\d{2}R?\d{2})\s+(\d{2,3})([A-Z])`)

// RepairCore backfills load index and speed rating from rawLine (or the
// size itself) when the size is known but either code is missing. Fields
// that are already set are never overwritten.
func RepairCore(core CoreSpec, rawLine string) CoreSpec {
	if core.Size == nil || (core.LoadIndex != nil && core.SpeedRating != nil) {
		return core
	}
	source := rawLine
	if strings.TrimSpace(source) == "" {
		source = *core.Size
	}
	m := sidewallSizePattern.FindStringSubmatch(source)
	if m == nil {
		return core
	}
	if !strings.Contains(*core.Size, m[1]) {
		core.Size = strPtr(m[1])
	}
	if core.LoadIndex == nil {
		core.LoadIndex = strPtr(m[2])
	}
	if core.SpeedRating == nil {
		core.SpeedRating = strPtr(m[3])
	}
	return core
}
