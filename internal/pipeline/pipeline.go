package pipeline

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/nleskov/modelscout/internal/cache"
	"github.com/nleskov/modelscout/internal/extract"
	"github.com/nleskov/modelscout/internal/llm"
	"github.com/nleskov/modelscout/internal/model"
	"github.com/nleskov/modelscout/internal/score"
	"github.com/nleskov/modelscout/internal/source"
	"github.com/nleskov/modelscout/internal/validate"
)

// Pipeline runs the whole query flow: fan out to sources, extract and
// validate mentions, score, and assemble one recommendation per source.
type Pipeline struct {
	cfg          *model.Config
	orchestrator *Orchestrator
	extractor    *extract.Extractor
	validator    *validate.Validator
	ranker       *score.Ranker
	assembler    *Assembler
	provider     llm.Provider
	logger       *zap.Logger
}

// New builds a production pipeline from configuration: search clients,
// page fetcher, cache, sources, and the optional LLM collaborator.
func New(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy))
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			store = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		}
	}

	pages := source.NewPageFetcher(cfg.HTTP, cfg.RateLimit, store, cfg.Cache.TTL)
	search := source.NewGoogleClient(cfg.Search, cfg.HTTP)

	var searchClient source.SearchClient
	if search != nil {
		searchClient = search
	}

	fetchers := []source.Fetcher{
		source.NewRedditFetcher(searchClient, pages, cfg.Search, cfg.Pipeline.StrategyTimeout, logger),
		source.NewYouTubeFetcher(searchClient, pages, cfg.Search, cfg.Pipeline.StrategyTimeout, logger),
	}

	return NewWithSources(cfg, fetchers, provider, logger), nil
}

// NewWithSources builds a pipeline over explicit fetchers. Tests and the
// batch command use this to substitute sources.
func NewWithSources(cfg *model.Config, fetchers []source.Fetcher, provider llm.Provider, logger *zap.Logger) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		cfg:          cfg,
		orchestrator: NewOrchestrator(fetchers, logger),
		extractor:    extract.NewExtractor(provider, logger),
		validator:    validate.NewValidator(cfg.Validation),
		ranker:       score.NewRanker(cfg.Scoring),
		assembler:    NewAssembler(cfg.Pipeline.MaxDescriptionLen),
		provider:     provider,
		logger:       logger,
	}
}

// HandleQuery is the single entry point. Invalid input returns
// ErrInvalidQuery before any fetching starts; every downstream failure
// degrades to an absent source instead of an error. An empty result map
// means no source produced a confident recommendation.
func (p *Pipeline) HandleQuery(ctx context.Context, product string, attributes []string) (model.PipelineResult, error) {
	query, err := model.NewQuery(product, attributes)
	if err != nil {
		return nil, err
	}

	deadline := p.cfg.Pipeline.Deadline
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	p.logger.Info("handling query",
		zap.String("product", query.Product),
		zap.Strings("attributes", query.Attributes))

	bySource := p.orchestrator.Fetch(ctx, query)

	result := make(model.PipelineResult)
	for _, sourceID := range sortedKeys(bySource) {
		candidate := p.processSource(ctx, bySource[sourceID], query)
		if candidate == nil {
			p.logger.Debug("source produced no confident recommendation",
				zap.String("source", sourceID))
			continue
		}
		result[sourceID] = p.assembler.Assemble(candidate, query)
	}

	p.logger.Info("query complete", zap.Int("sources", len(result)))
	return result, nil
}

// processSource runs extraction, validation, sentiment, and ranking over
// one source's documents.
func (p *Pipeline) processSource(ctx context.Context, docs []model.RawDocument, query model.Query) *model.ProductCandidate {
	var valid []model.CandidateMention
	for _, doc := range docs {
		for _, mention := range p.extractor.Extract(ctx, doc, query) {
			if !p.validator.Validate(mention.RawText, query.Product) {
				continue
			}
			p.applySentiment(ctx, &mention)
			valid = append(valid, mention)
		}
	}
	return p.ranker.Rank(valid, query)
}

// applySentiment scores a mention's context snippet. The LLM collaborator
// is preferred; the lexicon fallback covers the rest; a mention with no
// signal stays nil and counts as neutral during ranking.
func (p *Pipeline) applySentiment(ctx context.Context, mention *model.CandidateMention) {
	text := mention.ContextSnippet
	if text == "" {
		return
	}

	if p.provider != nil {
		if s, err := p.provider.ScoreSentiment(ctx, text); err == nil {
			mention.Sentiment = &s
			return
		}
	}

	if s, ok := extract.BasicSentiment(text); ok {
		mention.Sentiment = &s
	}
}

func sortedKeys(m map[string][]model.RawDocument) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
