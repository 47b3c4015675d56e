package model

// Retrieval records which strategy of a source fetcher produced a document.
type Retrieval string

const (
	RetrievedPrimary  Retrieval = "primary"
	RetrievedFallback Retrieval = "fallback"
)

// RawDocument is a unit of text retrieved from one source: a forum comment,
// a video transcript, a search snippet. Owned by the pipeline run and
// discarded after extraction.
type RawDocument struct {
	SourceID     string    `json:"source_id"`
	URL          string    `json:"url"`
	Text         string    `json:"text"`
	Popularity   float64   `json:"popularity"` // Source-specific signal: upvotes, views, likes
	RetrievedVia Retrieval `json:"retrieved_via"`
}

// CandidateMention is one occurrence of text suspected to name a product
// model. Mentions are not deduplicated at extraction time; grouping happens
// during ranking.
type CandidateMention struct {
	SourceID       string   `json:"source_id"`
	RawText        string   `json:"raw_text"`        // The matched token/phrase
	ContextSnippet string   `json:"context_snippet"` // Window of surrounding text
	URL            string   `json:"url"`             // Document the mention came from
	Popularity     float64  `json:"popularity"`
	Sentiment      *float64 `json:"sentiment,omitempty"` // In [-1, 1]; nil until computed
}
