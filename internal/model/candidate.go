package model

// ProductCandidate aggregates all mentions of one normalized product name
// within a single source. Candidates are never merged across sources.
type ProductCandidate struct {
	NormalizedName       string   `json:"normalized_name"`
	SourceID             string   `json:"source_id"`
	MentionCount         int      `json:"mention_count"`
	AggregatedPopularity float64  `json:"aggregated_popularity"`
	AverageSentiment     float64  `json:"average_sentiment"`
	SupportingURLs       []string `json:"supporting_urls"` // Ordered, deduplicated, non-empty
	TopSnippet           string   `json:"top_snippet"`     // Snippet of the highest-popularity mention
	Score                float64  `json:"score"`
}
