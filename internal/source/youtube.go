package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nleskov/modelscout/internal/model"
)

const (
	youtubeSourceID = "youtube"
	youtubeAPIBase  = "https://www.googleapis.com/youtube/v3"
)

// Engagement floor: videos below every threshold are skipped as noise.
const (
	minVideoViews    = 1000
	minVideoLikes    = 50
	minLikeViewRatio = 0.01
)

// YouTubeFetcher pulls review videos. The primary strategy uses the Data
// API for search plus statistics; the fallback searches the open web for
// YouTube pages and uses result snippets.
type YouTubeFetcher struct {
	apiKey     string
	apiBase    string
	pages      *PageFetcher
	search     SearchClient
	maxResults int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewYouTubeFetcher creates the YouTube source. Either credential may be
// missing; the fetcher runs whichever strategies it can.
func NewYouTubeFetcher(search SearchClient, pages *PageFetcher, cfg model.SearchConfig, timeout time.Duration, logger *zap.Logger) *YouTubeFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	return &YouTubeFetcher{
		apiKey:     cfg.YouTubeAPIKey,
		apiBase:    youtubeAPIBase,
		pages:      pages,
		search:     search,
		maxResults: maxResults,
		timeout:    timeout,
		logger:     logger,
	}
}

func (y *YouTubeFetcher) ID() string { return youtubeSourceID }

// Fetch runs the Data API strategy, a simplified-query retry, then the
// web-search fallback.
func (y *YouTubeFetcher) Fetch(ctx context.Context, query model.Query) []model.RawDocument {
	strategies := []strategy{}
	if y.apiKey != "" {
		strategies = append(strategies,
			strategy{name: "data_api", run: func(ctx context.Context, q model.Query) ([]model.RawDocument, error) {
				return y.viaDataAPI(ctx, q)
			}},
			strategy{name: "data_api_simplified", run: func(ctx context.Context, q model.Query) ([]model.RawDocument, error) {
				return y.viaDataAPI(ctx, simplifyQuery(q))
			}},
		)
	}
	if y.search != nil {
		strategies = append(strategies,
			strategy{name: "web_search", run: y.viaWebSearch},
		)
	}

	return runStrategies(ctx, youtubeSourceID, y.timeout, y.logger, query, strategies)
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// viaDataAPI searches for review videos and keeps the ones that clear
// the engagement floor. The description stands in for a transcript.
func (y *YouTubeFetcher) viaDataAPI(ctx context.Context, query model.Query) ([]model.RawDocument, error) {
	q := strings.Join(query.Terms(), " ") + " review"

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", q)
	params.Set("maxResults", strconv.Itoa(y.maxResults))
	params.Set("key", y.apiKey)

	var searchResp youtubeSearchResponse
	if err := y.pages.FetchJSON(ctx, y.apiBase+"/search?"+params.Encode(), &searchResp); err != nil {
		return nil, fmt.Errorf("video search: %w", err)
	}

	var ids []string
	for _, item := range searchResp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no videos found")
	}

	params = url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", y.apiKey)

	var videosResp youtubeVideosResponse
	if err := y.pages.FetchJSON(ctx, y.apiBase+"/videos?"+params.Encode(), &videosResp); err != nil {
		return nil, fmt.Errorf("video statistics: %w", err)
	}

	var docs []model.RawDocument
	for _, v := range videosResp.Items {
		views, _ := strconv.ParseFloat(v.Statistics.ViewCount, 64)
		likes, _ := strconv.ParseFloat(v.Statistics.LikeCount, 64)
		if !engagedEnough(views, likes) {
			continue
		}

		text := strings.TrimSpace(v.Snippet.Title + "\n" + v.Snippet.Description)
		if text == "" || !hasProductContext(text, query) {
			continue
		}

		docs = append(docs, model.RawDocument{
			SourceID:     youtubeSourceID,
			URL:          "https://www.youtube.com/watch?v=" + v.ID,
			Text:         text,
			Popularity:   views,
			RetrievedVia: model.RetrievedPrimary,
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no videos cleared the engagement floor")
	}
	return docs, nil
}

// viaWebSearch falls back to searching the open web for YouTube pages
// and mining the result snippets. No statistics are available this way,
// so popularity stays zero.
func (y *YouTubeFetcher) viaWebSearch(ctx context.Context, query model.Query) ([]model.RawDocument, error) {
	q := fmt.Sprintf("site:youtube.com %s review", strings.Join(query.Terms(), " "))
	hits, err := y.search.Search(ctx, q, y.maxResults)
	if err != nil {
		return nil, err
	}

	sortByRelevance(hits, query)

	var docs []model.RawDocument
	for _, h := range hits {
		text := strings.TrimSpace(h.Title + "\n" + h.Snippet)
		if text == "" || !hasProductContext(text, query) {
			continue
		}
		docs = append(docs, model.RawDocument{
			SourceID:     youtubeSourceID,
			URL:          h.URL,
			Text:         text,
			RetrievedVia: model.RetrievedFallback,
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no usable snippets among %d hits", len(hits))
	}
	return docs, nil
}

func engagedEnough(views, likes float64) bool {
	if views >= minVideoViews || likes >= minVideoLikes {
		return true
	}
	return views > 0 && likes/views >= minLikeViewRatio
}
