package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nleskov/modelscout/internal/cache"
	"github.com/nleskov/modelscout/internal/model"
	"github.com/nleskov/modelscout/internal/util"
	"github.com/nleskov/modelscout/internal/worker"
)

// SearchHit is one result returned by a search backend.
type SearchHit struct {
	URL     string
	Title   string
	Snippet string
}

// SearchClient runs web searches. The production implementation talks to
// the Google Custom Search API; tests substitute stubs.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error)
}

// GoogleClient implements SearchClient against the Custom Search API.
type GoogleClient struct {
	apiKey     string
	engineID   string
	httpClient *http.Client
	baseURL    string
}

// NewGoogleClient creates a search client. Returns nil when credentials
// are missing so callers can skip search-backed strategies cleanly.
func NewGoogleClient(cfg model.SearchConfig, httpCfg model.HTTPConfig) *GoogleClient {
	if cfg.GoogleAPIKey == "" || cfg.GoogleEngineID == "" {
		return nil
	}
	return &GoogleClient{
		apiKey:   cfg.GoogleAPIKey,
		engineID: cfg.GoogleEngineID,
		httpClient: &http.Client{
			Timeout: httpCfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		baseURL: "https://www.googleapis.com/customsearch/v1",
	}
}

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search runs one Custom Search query. The API caps num at 10.
func (g *GoogleClient) Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: unexpected status %d", resp.StatusCode)
	}

	var parsed googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]SearchHit, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		hits = append(hits, SearchHit{URL: item.Link, Title: item.Title, Snippet: item.Snippet})
	}
	return hits, nil
}

// PageFetcher retrieves pages for scraping strategies. Every fetch goes
// through the robots checker, the per-domain rate limiter, and the
// response cache, in that order.
type PageFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewPageFetcher wires a page fetcher from configuration. cache may be
// nil to disable caching.
func NewPageFetcher(cfg model.HTTPConfig, rl model.RateLimitConfig, store cache.Cache, ttl time.Duration) *PageFetcher {
	return &PageFetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter:   worker.NewLimiter(rl.RequestsPerSecond, rl.Burst),
		cache:     store,
		cacheTTL:  ttl,
	}
}

// Fetch retrieves a page body. Cached entries bypass the network and the
// rate limiter. Disallowed URLs fail without making a request.
func (p *PageFetcher) Fetch(ctx context.Context, rawURL string, accept string) ([]byte, error) {
	key := cache.Key("page", rawURL)
	if p.cache != nil {
		if body, ok := p.cache.Get(key); ok {
			return body, nil
		}
	}

	allowed, crawlDelay, err := p.robots.CanFetch(ctx, rawURL)
	if err == nil && !allowed {
		return nil, fmt.Errorf("robots.txt disallows %s", rawURL)
	}

	if err := p.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if p.cache != nil {
		_ = p.cache.Set(key, body, p.cacheTTL)
	}
	return body, nil
}

// FetchJSON retrieves a URL and decodes the response body into out.
func (p *PageFetcher) FetchJSON(ctx context.Context, rawURL string, out any) error {
	body, err := p.Fetch(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// visibleText strips tags, scripts, and styles from an HTML document and
// returns the readable text with whitespace collapsed.
func visibleText(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// sortByRelevance orders hits by how many query terms appear in their
// title or snippet. Stable, so the backend's own ordering breaks ties.
func sortByRelevance(hits []SearchHit, query model.Query) {
	terms := query.Terms()
	overlap := func(h SearchHit) int {
		haystack := strings.ToLower(h.Title + " " + h.Snippet)
		n := 0
		for _, t := range terms {
			if strings.Contains(haystack, t) {
				n++
			}
		}
		return n
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return overlap(hits[i]) > overlap(hits[j])
	})
}
