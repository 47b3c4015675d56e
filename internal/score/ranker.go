package score

import (
	"math"
	"sort"
	"strings"

	"github.com/nleskov/modelscout/internal/model"
)

// Ranker aggregates validated mentions into scored product candidates and
// picks one winner per source. Deterministic: given the same mentions, the
// same candidate wins regardless of the order they arrived in.
type Ranker struct {
	cfg model.ScoringConfig
}

// NewRanker creates a ranker with the given weights and thresholds.
func NewRanker(cfg model.ScoringConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank groups mentions by normalized name, scores each group, and returns
// the winner. Returns nil when the mention list is empty or every group
// falls below the sentiment threshold.
func (r *Ranker) Rank(mentions []model.CandidateMention, query model.Query) *model.ProductCandidate {
	if len(mentions) == 0 {
		return nil
	}

	groups := r.group(mentions)

	var candidates []*model.ProductCandidate
	for _, g := range groups {
		c := r.build(g)
		// Net-negative recommendations are excluded; ties at the
		// threshold are retained.
		if c.AverageSentiment < r.cfg.SentimentThreshold {
			continue
		}
		c.Score = r.score(c, g, query)
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.SupportingURLs) != len(b.SupportingURLs) {
			return len(a.SupportingURLs) > len(b.SupportingURLs)
		}
		return a.NormalizedName < b.NormalizedName
	})

	return candidates[0]
}

// NormalizeName canonicalizes a mention's text for grouping: case-fold,
// collapse whitespace, strip trailing punctuation.
func NormalizeName(text string) string {
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))
	return strings.TrimRight(text, ".,;:!?-")
}

type group struct {
	name     string
	mentions []model.CandidateMention
}

// group partitions mentions by normalized name, ordered by name so that
// downstream iteration is deterministic.
func (r *Ranker) group(mentions []model.CandidateMention) []group {
	byName := make(map[string][]model.CandidateMention)
	for _, m := range mentions {
		name := NormalizeName(m.RawText)
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], m)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]group, 0, len(names))
	for _, name := range names {
		groups = append(groups, group{name: name, mentions: byName[name]})
	}
	return groups
}

// build computes the aggregate fields for one group. Missing sentiment
// scores count as neutral zero in the average.
func (r *Ranker) build(g group) *model.ProductCandidate {
	var popularity, sentimentSum float64
	var topSnippet string
	topPopularity := math.Inf(-1)

	seen := make(map[string]bool)
	var urls []string

	for _, m := range g.mentions {
		popularity += m.Popularity
		if m.Sentiment != nil {
			sentimentSum += *m.Sentiment
		}
		if m.URL != "" && !seen[m.URL] {
			seen[m.URL] = true
			urls = append(urls, m.URL)
		}
		if m.Popularity > topPopularity {
			topPopularity = m.Popularity
			topSnippet = m.ContextSnippet
		}
	}

	return &model.ProductCandidate{
		NormalizedName:       g.name,
		SourceID:             g.mentions[0].SourceID,
		MentionCount:         len(g.mentions),
		AggregatedPopularity: popularity,
		AverageSentiment:     sentimentSum / float64(len(g.mentions)),
		SupportingURLs:       urls,
		TopSnippet:           topSnippet,
	}
}

// score computes the weighted combination plus the attribute bonus. The
// bonus nudges, it never overrides the base score.
func (r *Ranker) score(c *model.ProductCandidate, g group, query model.Query) float64 {
	s := r.cfg.MentionWeight*float64(c.MentionCount) +
		r.cfg.PopularityWeight*math.Log1p(c.AggregatedPopularity) +
		r.cfg.SentimentWeight*c.AverageSentiment

	for _, attr := range query.Attributes {
		lower := strings.ToLower(attr)
		for _, m := range g.mentions {
			if strings.Contains(strings.ToLower(m.ContextSnippet), lower) {
				s += r.cfg.AttributeBonus
				break // One bonus per attribute, not per mention
			}
		}
	}

	return s
}
