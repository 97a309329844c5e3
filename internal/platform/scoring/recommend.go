package scoring

// FallbackRecommendation is returned when a module's tables yield nothing.
const FallbackRecommendation = "Discuss these results with your primary care provider at your next routine visit."

// Advice is a module's static recommendation table.
type Advice struct {
	// Baseline recommendations are always included.
	Baseline []string
	// ByRule maps a high-impact rule ID to its recommendation.
	ByRule map[string]string
	// Urgent maps a level label to specialist referrals prepended when the
	// level is within the UrgentBands highest bands.
	Urgent      map[string][]string
	UrgentBands int
	Fallback    string
}

// Recommend builds the ordered, deduplicated recommendation list. It never
// returns an empty slice.
func (a Advice) Recommend(cls *Classifier, level Level, contribs []WeightedContribution) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	if a.UrgentBands > 0 && cls != nil && cls.Top(level, a.UrgentBands) {
		for _, s := range a.Urgent[level.Label] {
			add(s)
		}
	}
	for _, s := range a.Baseline {
		add(s)
	}
	for _, c := range contribs {
		if !c.HighImpact {
			continue
		}
		add(a.ByRule[c.RuleID])
	}

	if len(out) == 0 {
		fb := a.Fallback
		if fb == "" {
			fb = FallbackRecommendation
		}
		out = append(out, fb)
	}
	return out
}
