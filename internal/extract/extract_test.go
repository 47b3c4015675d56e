package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/nleskov/modelscout/internal/model"
)

type fakeProvider struct {
	names     []string
	sentiment float64
	err       error
	calls     int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ExtractModelNames(ctx context.Context, text string) ([]string, error) {
	f.calls++
	return f.names, f.err
}

func (f *fakeProvider) ScoreSentiment(ctx context.Context, text string) (float64, error) {
	return f.sentiment, f.err
}

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func doc(text string) model.RawDocument {
	return model.RawDocument{
		SourceID:   "reddit",
		URL:        "https://reddit.com/r/VacuumCleaners/comments/abc",
		Text:       text,
		Popularity: 42,
	}
}

func TestExtract_CategoryPattern(t *testing.T) {
	e := NewExtractor(nil, nil)
	query := model.Query{Product: "vacuum cleaner"}

	mentions := e.Extract(context.Background(),
		doc("I bought the Dyson V15 Detect last year and it is still going strong."), query)

	if len(mentions) == 0 {
		t.Fatal("Expected at least one mention")
	}

	found := false
	for _, m := range mentions {
		if m.RawText == "Dyson V15 Detect" {
			found = true
			if !strings.Contains(m.ContextSnippet, "going strong") {
				t.Errorf("Expected snippet to include surrounding text, got %q", m.ContextSnippet)
			}
			if m.Popularity != 42 {
				t.Errorf("Expected popularity carried from document, got %v", m.Popularity)
			}
		}
	}
	if !found {
		t.Errorf("Expected 'Dyson V15 Detect' among mentions: %+v", mentions)
	}
}

func TestExtract_GPUModelCodes(t *testing.T) {
	e := NewExtractor(nil, nil)
	query := model.Query{Product: "graphics card"}

	mentions := e.Extract(context.Background(),
		doc("Grab an RTX 4070 Super if you can, or a Radeon RX 7800 XT on a budget."), query)

	var texts []string
	for _, m := range mentions {
		texts = append(texts, m.RawText)
	}

	wantSubstrings := []string{"RTX 4070", "RX 7800"}
	for _, want := range wantSubstrings {
		found := false
		for _, got := range texts {
			if strings.Contains(got, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected a mention containing %q, got %v", want, texts)
		}
	}
}

func TestExtract_GenericBrandModel(t *testing.T) {
	e := NewExtractor(nil, nil)
	query := model.Query{Product: "air fryer"} // No category set for this

	mentions := e.Extract(context.Background(),
		doc("Everyone in the thread suggested the Ninja Foodi Max and nobody regretted it."), query)

	found := false
	for _, m := range mentions {
		if strings.HasPrefix(m.RawText, "Ninja Foodi") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected generic pattern to catch 'Ninja Foodi ...', got %+v", mentions)
	}
}

func TestExtract_NoMatchesYieldsNothing(t *testing.T) {
	e := NewExtractor(nil, nil)
	query := model.Query{Product: "vacuum cleaner"}

	mentions := e.Extract(context.Background(),
		doc("honestly just get whatever is on sale, they are all the same to me"), query)

	if len(mentions) != 0 {
		t.Errorf("Expected zero mentions, got %+v", mentions)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	e := NewExtractor(nil, nil)
	if got := e.Extract(context.Background(), doc("   "), model.Query{Product: "vacuum"}); len(got) != 0 {
		t.Errorf("Expected zero mentions for blank text, got %+v", got)
	}
}

func TestExtract_LLMFallbackWhenPatternsEmpty(t *testing.T) {
	provider := &fakeProvider{names: []string{"dyson v15 detect"}}
	e := NewExtractor(provider, nil)
	query := model.Query{Product: "vacuum cleaner"}

	// Lowercase text defeats the capitalization-based patterns.
	mentions := e.Extract(context.Background(),
		doc("the dyson v15 detect is cordless and affordable, i use it daily"), query)

	if provider.calls != 1 {
		t.Fatalf("Expected exactly one LLM call, got %d", provider.calls)
	}
	if len(mentions) != 1 {
		t.Fatalf("Expected 1 mention from LLM, got %d", len(mentions))
	}
	if mentions[0].RawText != "dyson v15 detect" {
		t.Errorf("Expected LLM name preserved, got %q", mentions[0].RawText)
	}
	if !strings.Contains(mentions[0].ContextSnippet, "cordless and affordable") {
		t.Errorf("Expected snippet anchored at the name, got %q", mentions[0].ContextSnippet)
	}
}

func TestExtract_LLMNotCalledWhenPatternsMatch(t *testing.T) {
	provider := &fakeProvider{names: []string{"should not appear"}}
	e := NewExtractor(provider, nil)
	query := model.Query{Product: "vacuum cleaner"}

	e.Extract(context.Background(), doc("The Dyson V15 Detect is great."), query)

	if provider.calls != 0 {
		t.Errorf("Expected no LLM calls when patterns matched, got %d", provider.calls)
	}
}

func TestExtract_LLMErrorDegradesToNothing(t *testing.T) {
	provider := &fakeProvider{err: context.DeadlineExceeded}
	e := NewExtractor(provider, nil)

	mentions := e.Extract(context.Background(),
		doc("nothing capitalized here at all"), model.Query{Product: "vacuum"})

	if len(mentions) != 0 {
		t.Errorf("Expected zero mentions on LLM error, got %+v", mentions)
	}
}

func TestPatternsFor(t *testing.T) {
	tests := []struct {
		product string
		want    string
	}{
		{"vacuum cleaner", "vacuum"},
		{"gaming gpu", "gpu"},
		{"budget smartphone", "phone"},
		{"air fryer", ""},
	}

	for _, tt := range tests {
		got := PatternsFor(tt.product)
		if tt.want == "" {
			if got != nil {
				t.Errorf("PatternsFor(%q): expected nil, got %s", tt.product, got.Name)
			}
			continue
		}
		if got == nil || got.Name != tt.want {
			t.Errorf("PatternsFor(%q): expected %q, got %+v", tt.product, tt.want, got)
		}
	}
}

func TestBasicSentiment(t *testing.T) {
	score, ok := BasicSentiment("This vacuum is great, I love it and recommend it.")
	if !ok || score <= 0 {
		t.Errorf("Expected positive sentiment, got %v (ok=%v)", score, ok)
	}

	score, ok = BasicSentiment("Terrible product, broken on arrival, total waste.")
	if !ok || score >= 0 {
		t.Errorf("Expected negative sentiment, got %v (ok=%v)", score, ok)
	}

	_, ok = BasicSentiment("It arrived on Tuesday in a cardboard box.")
	if ok {
		t.Error("Expected no sentiment terms to report ok=false")
	}
}
