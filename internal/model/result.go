package model

// SourceResult is the externally visible recommendation for one source.
type SourceResult struct {
	Product     string   `json:"product"`
	Description string   `json:"description"`
	Sources     []string `json:"sources"`
	BuyLink     string   `json:"buy_link"`
}

// PipelineResult maps source IDs to their recommendation. A source that
// produced no surviving candidate is simply absent from the map; an empty
// map is a valid "no recommendations found" outcome, not an error.
type PipelineResult map[string]SourceResult
