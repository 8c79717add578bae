package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"trendscope/internal/domain/platform"
)

// ForumFetcher pulls discussion posts from the Reddit search API. The
// public JSON endpoint needs no credentials, only a descriptive
// User-Agent.
type ForumFetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// redditPost is the subset of a Reddit post the normalizer consumes.
type redditPost struct {
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Created     float64 `json:"created_utc"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Stickied    bool    `json:"stickied"`
}

type redditResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewForumFetcher creates a Reddit-backed forum fetcher.
func NewForumFetcher(userAgent string) *ForumFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &ForumFetcher{
		httpClient: newHTTPClient(),
		baseURL:    "https://www.reddit.com",
		userAgent:  userAgent,
	}
}

func (f *ForumFetcher) Platform() platform.Platform { return platform.Forum }

// Fetch searches all of Reddit for the query within the time range.
func (f *ForumFetcher) Fetch(ctx context.Context, query string, opts platform.FetchOptions) ([]platform.RawItem, error) {
	limit := clampMaxItems(opts.MaxItems, 25, 100)

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("sort", "relevance")
	params.Set("t", redditTimeFilter(opts.TimeRange))
	params.Set("raw_json", "1")

	endpoint := fmt.Sprintf("%s/search.json?%s", f.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, platform.NewFetchError(platform.Forum, platform.ReasonNetworkError, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, platform.NewFetchError(platform.Forum, classifyTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, platform.NewFetchError(platform.Forum, classifyStatus(resp.StatusCode),
			fmt.Errorf("reddit search returned status %d", resp.StatusCode))
	}

	var body redditResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, platform.NewFetchError(platform.Forum, platform.ReasonParseError,
			fmt.Errorf("failed to decode reddit response: %w", err))
	}

	items := make([]platform.RawItem, 0, len(body.Data.Children))
	for _, child := range body.Data.Children {
		post := child.Data
		if post.Stickied {
			continue
		}
		published := time.Unix(int64(post.Created), 0).UTC()
		items = append(items, platform.RawItem{
			Platform:    platform.Forum,
			URL:         f.baseURL + post.Permalink,
			Title:       post.Title,
			Author:      post.Author,
			PublishedAt: &published,
			Body:        post.SelfText,
			Metrics: platform.RawMetrics{
				Upvotes:  post.Score,
				Comments: post.NumComments,
			},
		})
	}
	return items, nil
}

func redditTimeFilter(r platform.TimeRange) string {
	switch r {
	case platform.Range24h:
		return "day"
	case platform.Range30d:
		return "month"
	default:
		return "week"
	}
}
