package analysis

import "time"

// Normalize turns a parse outcome into a result with every section
// present. Availability is left empty; the caller fills it from the
// registry.
func Normalize(outcome ParseOutcome, now time.Time) Result {
	doc := Doc(outcome)
	var core CoreSpec
	if doc.Core != nil {
		core = *doc.Core
	}
	core = RepairCore(core, doc.RawText)
	return Result{
		Core:         core,
		Condition:    NormalizeCondition(doc.Condition),
		Context:      ResolveContext(doc.Context, core.DOT, now),
		Availability: SummarizeMatches(nil),
	}
}
