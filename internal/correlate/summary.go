package correlate

import (
	"fmt"
	"strings"
)

// summarize renders a one-sentence reading of the result.
func summarize(r *Result) string {
	if r.Strength == Weak {
		return fmt.Sprintf("No clear correlation found between %s and %s (r = %.2f).", r.XLabel, r.YLabel, r.Score)
	}
	trend := "higher"
	if r.Direction == Negative {
		trend = "lower"
	}
	strength := strings.ReplaceAll(r.Strength, "-", " ")
	return fmt.Sprintf("Found a %s %s correlation (%.2f) between %s and %s across %d regions: regions with higher %s tend to have %s %s.",
		strength, r.Direction, r.Score, r.XLabel, r.YLabel, r.MatchedRegionCount, r.XLabel, trend, r.YLabel)
}
