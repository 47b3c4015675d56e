package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nleskov/modelscout/internal/model"
	"github.com/nleskov/modelscout/internal/source"
)

type stubFetcher struct {
	id     string
	docs   []model.RawDocument
	delay  time.Duration
	called bool
}

func (s *stubFetcher) ID() string { return s.id }

func (s *stubFetcher) Fetch(ctx context.Context, _ model.Query) []model.RawDocument {
	s.called = true
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return s.docs
}

func redditDoc(text string, ups float64, u string) model.RawDocument {
	return model.RawDocument{
		SourceID:     "reddit",
		URL:          u,
		Text:         text,
		Popularity:   ups,
		RetrievedVia: model.RetrievedPrimary,
	}
}

func testPipeline(cfg *model.Config, fetchers ...source.Fetcher) *Pipeline {
	return NewWithSources(cfg, fetchers, nil, nil)
}

func TestHandleQuery_InvalidQuery(t *testing.T) {
	f := &stubFetcher{id: "reddit"}
	p := testPipeline(nil, f)

	_, err := p.HandleQuery(context.Background(), "   ", nil)
	if !errors.Is(err, model.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
	if f.called {
		t.Error("Expected no fetching for an invalid query")
	}
}

func TestHandleQuery_EndToEnd(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Pipeline.Deadline = 500 * time.Millisecond

	reddit := &stubFetcher{id: "reddit", docs: []model.RawDocument{
		redditDoc("I recommend the Dyson V15 Detect, it is excellent and reliable", 120, "https://reddit.example/t1"),
		redditDoc("Dyson V15 Detect is great for pet hair, love it", 80, "https://reddit.example/t2"),
		redditDoc("the Shark Navigator is a solid budget pick", 15, "https://reddit.example/t3"),
	}}
	// Never finishes inside the deadline; its source must simply be absent.
	youtube := &stubFetcher{id: "youtube", delay: 2 * time.Second}

	p := testPipeline(cfg, reddit, youtube)

	result, err := p.HandleQuery(context.Background(), "vacuum cleaner", []string{"cordless"})
	if err != nil {
		t.Fatalf("HandleQuery failed: %v", err)
	}

	if _, ok := result["youtube"]; ok {
		t.Error("Expected the timed-out source to be absent")
	}

	rec, ok := result["reddit"]
	if !ok {
		t.Fatalf("Expected a reddit recommendation, got %+v", result)
	}
	if rec.Product != "dyson v15 detect" {
		t.Errorf("Expected 'dyson v15 detect', got %q", rec.Product)
	}
	if rec.Description == "" {
		t.Error("Expected a non-empty description")
	}
	if len(rec.Sources) == 0 || len(rec.Sources) > 3 {
		t.Errorf("Expected 1-3 sources, got %v", rec.Sources)
	}
	if !strings.Contains(rec.BuyLink, "amazon.com/s?k=dyson+v15+detect") {
		t.Errorf("Unexpected buy link %q", rec.BuyLink)
	}
}

func TestHandleQuery_NoDocumentsAnywhere(t *testing.T) {
	p := testPipeline(nil, &stubFetcher{id: "reddit"}, &stubFetcher{id: "youtube"})

	result, err := p.HandleQuery(context.Background(), "vacuum", nil)
	if err != nil {
		t.Fatalf("HandleQuery failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected an empty result, got %+v", result)
	}
}

func TestHandleQuery_NoValidMentions(t *testing.T) {
	// Documents full of prices and bare brands; nothing survives
	// validation, so the source is absent rather than wrong.
	reddit := &stubFetcher{id: "reddit", docs: []model.RawDocument{
		redditDoc("I paid $499.99 for mine, Dyson makes a good vacuum", 10, "https://reddit.example/t1"),
	}}

	result, err := testPipeline(nil, reddit).HandleQuery(context.Background(), "vacuum", nil)
	if err != nil {
		t.Fatalf("HandleQuery failed: %v", err)
	}
	if _, ok := result["reddit"]; ok {
		t.Errorf("Expected no recommendation from invalid-only mentions, got %+v", result["reddit"])
	}
}

func TestHandleQuery_DeadlineBounds(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Pipeline.Deadline = 200 * time.Millisecond

	slow := &stubFetcher{id: "reddit", delay: 5 * time.Second}
	p := testPipeline(cfg, slow)

	start := time.Now()
	result, err := p.HandleQuery(context.Background(), "vacuum", nil)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("HandleQuery failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected no results from a timed-out run, got %+v", result)
	}
	if elapsed > time.Second {
		t.Errorf("Expected the run to stop near the deadline, took %v", elapsed)
	}
}

func TestHandleQuery_SentimentGate(t *testing.T) {
	// One heavily disliked product, one liked. The lexicon scorer drives
	// sentiment; the disliked group must not win on popularity alone.
	reddit := &stubFetcher{id: "reddit", docs: []model.RawDocument{
		redditDoc("the Hoover WindTunnel is terrible, awful build, broke twice", 900, "https://reddit.example/t1"),
		redditDoc("Hoover WindTunnel is bad, regret buying it", 800, "https://reddit.example/t2"),
		redditDoc("the Miele Triflex HX2 is excellent, love it", 30, "https://reddit.example/t3"),
	}}

	result, err := testPipeline(nil, reddit).HandleQuery(context.Background(), "vacuum", nil)
	if err != nil {
		t.Fatalf("HandleQuery failed: %v", err)
	}
	rec, ok := result["reddit"]
	if !ok {
		t.Fatal("Expected a recommendation")
	}
	if rec.Product != "miele triflex hx2" {
		t.Errorf("Expected the net-negative group to be excluded, got %q", rec.Product)
	}
}

func TestOrchestrator_CollectsFinishedSources(t *testing.T) {
	fast := &stubFetcher{id: "a", docs: []model.RawDocument{{SourceID: "a", Text: "x"}}}
	slow := &stubFetcher{id: "b", delay: 2 * time.Second, docs: []model.RawDocument{{SourceID: "b", Text: "y"}}}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	got := NewOrchestrator([]source.Fetcher{fast, slow}, nil).Fetch(ctx, model.Query{Product: "x"})
	if len(got) != 1 {
		t.Fatalf("Expected only the fast source, got %v", got)
	}
	if _, ok := got["a"]; !ok {
		t.Error("Expected source a to be collected")
	}
}

func TestAssembler_TruncatesAtWordBoundary(t *testing.T) {
	a := NewAssembler(40)
	candidate := &model.ProductCandidate{
		NormalizedName: "dyson v15 detect",
		TopSnippet:     "this vacuum absolutely changed how I clean my entire apartment every weekend",
		SupportingURLs: []string{"https://a.example/1"},
	}

	rec := a.Assemble(candidate, model.Query{Product: "vacuum"})
	if len(rec.Description) > 44 {
		t.Errorf("Expected truncated description, got %d chars: %q", len(rec.Description), rec.Description)
	}
	if !strings.HasSuffix(rec.Description, "...") {
		t.Errorf("Expected ellipsis, got %q", rec.Description)
	}
	if strings.Contains(rec.Description, "aparte") {
		t.Errorf("Expected cut at a word boundary, got %q", rec.Description)
	}
}

func TestAssembler_SynthesizesDescription(t *testing.T) {
	a := NewAssembler(0)
	candidate := &model.ProductCandidate{NormalizedName: "dyson v15 detect"}

	rec := a.Assemble(candidate, model.Query{Product: "Vacuum Cleaner", Attributes: []string{"cordless"}})
	if !strings.Contains(rec.Description, "dyson v15 detect") {
		t.Errorf("Expected the product name in the synthesized description, got %q", rec.Description)
	}
	if !strings.Contains(rec.Description, "vacuum cleaner") {
		t.Errorf("Expected the query category in the synthesized description, got %q", rec.Description)
	}
	if !strings.Contains(rec.Description, "cordless") {
		t.Errorf("Expected attributes in the synthesized description, got %q", rec.Description)
	}
}

func TestAssembler_CapsSourcesAtThree(t *testing.T) {
	a := NewAssembler(0)
	candidate := &model.ProductCandidate{
		NormalizedName: "dyson v15 detect",
		TopSnippet:     "great vacuum",
		SupportingURLs: []string{"u1", "u2", "u3", "u4", "u5"},
	}

	rec := a.Assemble(candidate, model.Query{Product: "vacuum"})
	if len(rec.Sources) != 3 {
		t.Errorf("Expected 3 sources, got %v", rec.Sources)
	}
	if rec.Sources[0] != "u1" || rec.Sources[2] != "u3" {
		t.Errorf("Expected the first three URLs in order, got %v", rec.Sources)
	}
}

func TestAssembler_BuyLinkEscapesName(t *testing.T) {
	a := NewAssembler(0)
	candidate := &model.ProductCandidate{NormalizedName: "sony wh-1000xm5", TopSnippet: "s"}

	rec := a.Assemble(candidate, model.Query{Product: "headphones"})
	if !strings.Contains(rec.BuyLink, "k=sony+wh-1000xm5") {
		t.Errorf("Unexpected buy link %q", rec.BuyLink)
	}
	if !strings.Contains(rec.BuyLink, "tag=allurecomreco-20") {
		t.Errorf("Expected the affiliate tag, got %q", rec.BuyLink)
	}
}
