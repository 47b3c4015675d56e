package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nleskov/modelscout/internal/llm"
	"github.com/nleskov/modelscout/internal/model"
)

// Snippet window around a match, used later to synthesize descriptions.
const (
	snippetBefore = 100
	snippetAfter  = 150
)

// Extractor converts retrieved documents into candidate product mentions.
// Pattern matching is authoritative and always runs; the optional LLM
// collaborator only adds mentions when patterns come up empty, and its
// output goes through the same validation as everything else.
type Extractor struct {
	provider llm.Provider // nil when the collaborator is disabled
	logger   *zap.Logger
}

// NewExtractor creates an extractor. provider may be nil.
func NewExtractor(provider llm.Provider, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{provider: provider, logger: logger}
}

// Extract finds candidate product mentions in one document. A document
// with no matches contributes zero mentions; that is not an error.
func (e *Extractor) Extract(ctx context.Context, doc model.RawDocument, query model.Query) []model.CandidateMention {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}

	mentions := e.matchPatterns(doc, query)

	if len(mentions) == 0 && e.provider != nil {
		mentions = e.matchViaLLM(ctx, doc)
	}

	return mentions
}

// matchPatterns runs the category set (when one applies) and then the
// generic brand+model pattern over the document text.
func (e *Extractor) matchPatterns(doc model.RawDocument, query model.Query) []model.CandidateMention {
	var mentions []model.CandidateMention
	seen := make(map[int]bool) // Match start offsets, to skip overlapping hits

	if cat := PatternsFor(query.Product); cat != nil {
		for _, pattern := range cat.Patterns {
			for _, loc := range pattern.FindAllStringIndex(doc.Text, -1) {
				if seen[loc[0]] {
					continue
				}
				seen[loc[0]] = true
				mentions = append(mentions, e.mentionAt(doc, loc[0], loc[1]))
			}
		}
	}

	for _, loc := range genericModelPattern.FindAllStringIndex(doc.Text, -1) {
		if covered(seen, loc[0]) {
			continue
		}
		seen[loc[0]] = true
		mentions = append(mentions, e.mentionAt(doc, loc[0], loc[1]))
	}

	return mentions
}

// matchViaLLM asks the language-understanding collaborator for model names
// when patterns found nothing. Failures degrade to zero mentions.
func (e *Extractor) matchViaLLM(ctx context.Context, doc model.RawDocument) []model.CandidateMention {
	names, err := e.provider.ExtractModelNames(ctx, doc.Text)
	if err != nil {
		e.logger.Debug("llm extraction failed",
			zap.String("source", doc.SourceID),
			zap.Error(err))
		return nil
	}

	var mentions []model.CandidateMention
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		// Anchor the snippet at the name when it appears verbatim;
		// otherwise fall back to the head of the document.
		start := strings.Index(strings.ToLower(doc.Text), strings.ToLower(name))
		if start < 0 {
			mentions = append(mentions, model.CandidateMention{
				SourceID:       doc.SourceID,
				RawText:        name,
				ContextSnippet: head(doc.Text, snippetBefore+snippetAfter),
				URL:            doc.URL,
				Popularity:     doc.Popularity,
			})
			continue
		}
		m := e.mentionAt(doc, start, start+len(name))
		m.RawText = name
		mentions = append(mentions, m)
	}

	return mentions
}

func (e *Extractor) mentionAt(doc model.RawDocument, start, end int) model.CandidateMention {
	lo := start - snippetBefore
	if lo < 0 {
		lo = 0
	}
	hi := end + snippetAfter
	if hi > len(doc.Text) {
		hi = len(doc.Text)
	}

	return model.CandidateMention{
		SourceID:       doc.SourceID,
		RawText:        strings.TrimSpace(doc.Text[start:end]),
		ContextSnippet: collapseWhitespace(doc.Text[lo:hi]),
		URL:            doc.URL,
		Popularity:     doc.Popularity,
	}
}

// covered reports whether offset falls inside or near an already-matched
// span. Category and generic patterns often hit the same phrase with
// slightly different boundaries.
func covered(seen map[int]bool, offset int) bool {
	for delta := -2; delta <= 2; delta++ {
		if seen[offset+delta] {
			return true
		}
	}
	return false
}

func head(s string, n int) string {
	if len(s) <= n {
		return collapseWhitespace(s)
	}
	return collapseWhitespace(s[:n])
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
