package extract

import "strings"

// Keyword lexicon for the degraded sentiment path, used when no LLM
// provider is configured or its call fails.
var (
	positiveTerms = []string{
		"good", "great", "excellent", "best", "love", "recommend", "amazing",
		"fantastic", "worth", "quality", "reliable", "impressive", "perfect",
		"awesome", "satisfied",
	}
	negativeTerms = []string{
		"bad", "poor", "terrible", "worst", "hate", "avoid", "disappointing",
		"broken", "waste", "regret", "awful", "horrible", "useless", "failed",
		"overpriced",
	}
)

// BasicSentiment scores text in [-1, 1] from keyword counts. Returns
// (0, false) when no sentiment-bearing terms occur, so callers can keep
// the mention's sentiment unset (neutral).
func BasicSentiment(text string) (float64, bool) {
	padded := " " + strings.ToLower(text) + " "

	var positive, negative int
	for _, term := range positiveTerms {
		positive += strings.Count(padded, " "+term+" ")
	}
	for _, term := range negativeTerms {
		negative += strings.Count(padded, " "+term+" ")
	}

	total := positive + negative
	if total == 0 {
		return 0, false
	}

	return float64(positive-negative) / float64(total), true
}
