package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/nleskov/modelscout/internal/model"
	"github.com/nleskov/modelscout/internal/worker"
)

const (
	redditSourceID   = "reddit"
	redditBase       = "https://old.reddit.com"
	topCommentsLimit = 5
)

// RedditFetcher pulls recommendation discussions from Reddit. The primary
// strategy finds threads through the search API; the fallback scrapes
// old.reddit.com search results directly.
type RedditFetcher struct {
	search     SearchClient
	pages      *PageFetcher
	baseURL    string
	maxThreads int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRedditFetcher creates the Reddit source. search may be nil when no
// API credentials are configured; only the scrape fallback runs then.
func NewRedditFetcher(search SearchClient, pages *PageFetcher, cfg model.SearchConfig, timeout time.Duration, logger *zap.Logger) *RedditFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxThreads := cfg.MaxThreads
	if maxThreads <= 0 {
		maxThreads = 3
	}
	return &RedditFetcher{
		search:     search,
		pages:      pages,
		baseURL:    redditBase,
		maxThreads: maxThreads,
		timeout:    timeout,
		logger:     logger,
	}
}

func (r *RedditFetcher) ID() string { return redditSourceID }

// Fetch tries the search-backed strategy first, retries it with a
// simplified query, then falls back to scraping Reddit's own search.
func (r *RedditFetcher) Fetch(ctx context.Context, query model.Query) []model.RawDocument {
	strategies := []strategy{}
	if r.search != nil {
		strategies = append(strategies,
			strategy{name: "search_api", run: func(ctx context.Context, q model.Query) ([]model.RawDocument, error) {
				return r.viaSearchAPI(ctx, q, model.RetrievedPrimary)
			}},
			strategy{name: "search_api_simplified", run: func(ctx context.Context, q model.Query) ([]model.RawDocument, error) {
				return r.viaSearchAPI(ctx, simplifyQuery(q), model.RetrievedPrimary)
			}},
		)
	}
	strategies = append(strategies,
		strategy{name: "html_search", run: r.viaHTMLSearch},
	)

	return runStrategies(ctx, redditSourceID, r.timeout, r.logger, query, strategies)
}

// viaSearchAPI searches for recommendation threads and scrapes the top
// ones concurrently.
func (r *RedditFetcher) viaSearchAPI(ctx context.Context, query model.Query, via model.Retrieval) ([]model.RawDocument, error) {
	q := fmt.Sprintf("site:reddit.com %s recommendation", strings.Join(query.Terms(), " "))
	hits, err := r.search.Search(ctx, q, 10)
	if err != nil {
		return nil, err
	}

	// Scrape the most relevant threads first; MaxThreads caps the spend.
	sortByRelevance(hits, query)

	var threadURLs []string
	for _, h := range hits {
		if strings.Contains(h.URL, "/comments/") {
			threadURLs = append(threadURLs, h.URL)
		}
	}
	if len(threadURLs) == 0 {
		return nil, fmt.Errorf("no comment threads among %d hits", len(hits))
	}
	if len(threadURLs) > r.maxThreads {
		threadURLs = threadURLs[:r.maxThreads]
	}

	return r.scrapeThreads(ctx, threadURLs, query, via), nil
}

// viaHTMLSearch scrapes old.reddit.com's own search page. Used when the
// search API is unavailable or found nothing.
func (r *RedditFetcher) viaHTMLSearch(ctx context.Context, query model.Query) ([]model.RawDocument, error) {
	q := url.QueryEscape(strings.Join(query.Terms(), " ") + " recommendation")
	searchURL := fmt.Sprintf("%s/search?q=%s&sort=relevance&t=year", r.baseURL, q)

	body, err := r.pages.Fetch(ctx, searchURL, "text/html")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var threadURLs []string
	doc.Find("a.search-title").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if ok && strings.Contains(href, "/comments/") {
			threadURLs = append(threadURLs, r.absoluteURL(href))
		}
		return len(threadURLs) < r.maxThreads
	})
	if len(threadURLs) == 0 {
		return nil, fmt.Errorf("no threads on search page")
	}

	return r.scrapeThreads(ctx, threadURLs, query, model.RetrievedFallback), nil
}

// scrapeThreads fetches thread pages through a worker pool, one job per
// thread. Failed threads are dropped; whatever succeeded is returned.
func (r *RedditFetcher) scrapeThreads(ctx context.Context, urls []string, query model.Query, via model.Retrieval) []model.RawDocument {
	pool := worker.NewPool(len(urls))
	pool.Start()
	for _, u := range urls {
		pool.Submit(&threadJob{fetcher: r, url: u, query: query, via: via, parent: ctx})
	}

	var docs []model.RawDocument
	for _, res := range pool.Wait() {
		tr, ok := res.(*threadResult)
		if !ok {
			continue
		}
		if tr.err != nil {
			r.logger.Debug("thread scrape failed", zap.String("url", tr.url), zap.Error(tr.err))
			continue
		}
		docs = append(docs, tr.docs...)
	}
	return docs
}

type threadJob struct {
	fetcher *RedditFetcher
	url     string
	query   model.Query
	via     model.Retrieval
	parent  context.Context
}

type threadResult struct {
	url  string
	docs []model.RawDocument
	err  error
}

func (t *threadResult) GetError() error { return t.err }

func (j *threadJob) Execute(ctx context.Context) worker.Result {
	// The pool's context only signals shutdown; the fetch deadline comes
	// from the strategy context.
	select {
	case <-ctx.Done():
		return &threadResult{url: j.url, err: ctx.Err()}
	default:
	}

	docs, err := j.fetcher.scrapeThread(j.parent, j.url, j.query, j.via)
	return &threadResult{url: j.url, docs: docs, err: err}
}

// scrapeThread pulls one thread via its JSON endpoint, falling back to
// HTML parsing when the JSON endpoint is blocked.
func (r *RedditFetcher) scrapeThread(ctx context.Context, threadURL string, query model.Query, via model.Retrieval) ([]model.RawDocument, error) {
	docs, jsonErr := r.threadFromJSON(ctx, threadURL, query, via)
	if jsonErr == nil && len(docs) > 0 {
		return docs, nil
	}

	docs, htmlErr := r.threadFromHTML(ctx, threadURL, query, via)
	if htmlErr != nil {
		if jsonErr != nil {
			return nil, fmt.Errorf("json: %v, html: %w", jsonErr, htmlErr)
		}
		return nil, htmlErr
	}
	return docs, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string  `json:"title"`
				Selftext string  `json:"selftext"`
				Body     string  `json:"body"`
				Ups      float64 `json:"ups"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// threadFromJSON reads the thread's .json endpoint. The response is two
// listings: the post itself and the comment forest.
func (r *RedditFetcher) threadFromJSON(ctx context.Context, threadURL string, query model.Query, via model.Retrieval) ([]model.RawDocument, error) {
	jsonURL := strings.TrimRight(threadURL, "/") + ".json"

	var listings []redditListing
	if err := r.pages.FetchJSON(ctx, jsonURL, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("unexpected listing count %d", len(listings))
	}

	var docs []model.RawDocument

	for _, child := range listings[0].Data.Children {
		post := child.Data
		text := strings.TrimSpace(post.Title + "\n" + post.Selftext)
		if text != "" && hasProductContext(text, query) {
			docs = append(docs, model.RawDocument{
				SourceID:     redditSourceID,
				URL:          threadURL,
				Text:         text,
				Popularity:   post.Ups,
				RetrievedVia: via,
			})
		}
	}

	comments := listings[1].Data.Children
	kept := 0
	for _, child := range comments {
		if kept >= topCommentsLimit {
			break
		}
		body := strings.TrimSpace(child.Data.Body)
		if body == "" || !hasProductContext(body, query) {
			continue
		}
		docs = append(docs, model.RawDocument{
			SourceID:     redditSourceID,
			URL:          threadURL,
			Text:         body,
			Popularity:   child.Data.Ups,
			RetrievedVia: via,
		})
		kept++
	}

	return docs, nil
}

var scoreSuffixPattern = regexp.MustCompile(`^(\d+)`)

// threadFromHTML parses the old-Reddit comment page markup.
func (r *RedditFetcher) threadFromHTML(ctx context.Context, threadURL string, query model.Query, via model.Retrieval) ([]model.RawDocument, error) {
	body, err := r.pages.Fetch(ctx, threadURL, "text/html")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse thread page: %w", err)
	}

	var docs []model.RawDocument
	doc.Find(".comment").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Find(".usertext-body").First().Text())
		if text == "" || !hasProductContext(text, query) {
			return true
		}

		ups := 0.0
		if score := s.Find(".score.unvoted").First().Text(); score != "" {
			if m := scoreSuffixPattern.FindStringSubmatch(strings.TrimSpace(score)); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					ups = float64(n)
				}
			}
		}

		docs = append(docs, model.RawDocument{
			SourceID:     redditSourceID,
			URL:          threadURL,
			Text:         text,
			Popularity:   ups,
			RetrievedVia: via,
		})
		return len(docs) < topCommentsLimit
	})

	if len(docs) == 0 {
		// Markup that doesn't match the old-Reddit selectors still has
		// the discussion in it somewhere; fall back to the page text.
		text := visibleText(body)
		if text == "" || !hasProductContext(text, query) {
			return nil, fmt.Errorf("no usable comments")
		}
		docs = append(docs, model.RawDocument{
			SourceID:     redditSourceID,
			URL:          threadURL,
			Text:         text,
			RetrievedVia: via,
		})
	}
	return docs, nil
}

func (r *RedditFetcher) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return r.baseURL + href
}
