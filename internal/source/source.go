package source

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nleskov/modelscout/internal/model"
)

// Fetcher retrieves raw documents for a query from one external source.
// Fetch never returns an error: a source that cannot produce anything
// yields an empty slice and the failure stays inside the source boundary.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, query model.Query) []model.RawDocument
}

// strategy is one retrieval attempt within a fetcher. Strategies run in
// declaration order; the first one to return documents wins.
type strategy struct {
	name string
	run  func(ctx context.Context, query model.Query) ([]model.RawDocument, error)
}

// runStrategies tries each strategy under its own sub-deadline until one
// yields documents. Failures are logged and swallowed.
func runStrategies(ctx context.Context, sourceID string, timeout time.Duration, logger *zap.Logger, query model.Query, strategies []strategy) []model.RawDocument {
	for _, s := range strategies {
		if ctx.Err() != nil {
			return nil
		}

		sctx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			sctx, cancel = context.WithTimeout(ctx, timeout)
		}

		docs, err := s.run(sctx, query)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			logger.Debug("source strategy failed",
				zap.String("source", sourceID),
				zap.String("strategy", s.name),
				zap.Error(err))
			continue
		}
		if len(docs) > 0 {
			logger.Debug("source strategy succeeded",
				zap.String("source", sourceID),
				zap.String("strategy", s.name),
				zap.Int("documents", len(docs)))
			return docs
		}
	}
	return nil
}

// simplifyQuery strips attribute qualifiers so a retry can search on the
// bare product category when the full query found nothing.
func simplifyQuery(query model.Query) model.Query {
	return model.Query{Product: query.Product}
}

// hasProductContext reports whether a block of text plausibly discusses
// products rather than, say, moderation notices or rules threads.
func hasProductContext(text string, query model.Query) bool {
	lower := strings.ToLower(text)
	for _, term := range query.Terms() {
		if strings.Contains(lower, term) {
			return true
		}
	}
	for _, hint := range productHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

var productHints = []string{
	"recommend", "bought", "buy", "purchase", "model", "review",
	"worth it", "best", "upgrade", "deal", "price",
}
