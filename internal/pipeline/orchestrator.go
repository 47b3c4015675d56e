package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/nleskov/modelscout/internal/model"
	"github.com/nleskov/modelscout/internal/source"
)

// Orchestrator fans a query out to every source fetcher under one shared
// deadline. Sources that miss the deadline are dropped; nothing a single
// source does can sink the whole run.
type Orchestrator struct {
	fetchers []source.Fetcher
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given fetchers.
func NewOrchestrator(fetchers []source.Fetcher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{fetchers: fetchers, logger: logger}
}

type fetchOutcome struct {
	sourceID string
	docs     []model.RawDocument
}

// Fetch runs every fetcher concurrently and collects whatever arrives
// before ctx expires, keyed by source ID. Late results are discarded.
func (o *Orchestrator) Fetch(ctx context.Context, query model.Query) map[string][]model.RawDocument {
	results := make(chan fetchOutcome, len(o.fetchers))

	for _, f := range o.fetchers {
		go func(f source.Fetcher) {
			results <- fetchOutcome{sourceID: f.ID(), docs: f.Fetch(ctx, query)}
		}(f)
	}

	collected := make(map[string][]model.RawDocument)
	for i := 0; i < len(o.fetchers); i++ {
		select {
		case out := <-results:
			if len(out.docs) > 0 {
				collected[out.sourceID] = out.docs
			}
			o.logger.Debug("source finished",
				zap.String("source", out.sourceID),
				zap.Int("documents", len(out.docs)))
		case <-ctx.Done():
			o.logger.Warn("deadline reached before all sources finished",
				zap.Int("finished", i),
				zap.Int("total", len(o.fetchers)))
			return collected
		}
	}
	return collected
}
