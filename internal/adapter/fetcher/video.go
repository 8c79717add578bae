package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trendscope/internal/domain/platform"
)

// VideoFetcher pulls videos from the YouTube Data API v3. Search gives
// the matching video IDs; a second call fetches their statistics because
// the search endpoint does not return view counts.
type VideoFetcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
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
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			// The API reports counts as strings.
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// NewVideoFetcher creates a YouTube-backed video fetcher.
func NewVideoFetcher(apiKey string) *VideoFetcher {
	return &VideoFetcher{
		httpClient: newHTTPClient(),
		baseURL:    "https://www.googleapis.com/youtube/v3",
		apiKey:     apiKey,
	}
}

func (f *VideoFetcher) Platform() platform.Platform { return platform.Video }

// Fetch searches YouTube for the query within the time range.
func (f *VideoFetcher) Fetch(ctx context.Context, query string, opts platform.FetchOptions) ([]platform.RawItem, error) {
	limit := clampMaxItems(opts.MaxItems, 25, 50)

	ids, err := f.searchVideoIDs(ctx, query, limit, opts.TimeRange)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return f.videoDetails(ctx, ids)
}

func (f *VideoFetcher) searchVideoIDs(ctx context.Context, query string, limit int, timeRange platform.TimeRange) ([]string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("publishedAfter", time.Now().Add(-timeRange.Duration()).UTC().Format(time.RFC3339))
	params.Set("key", f.apiKey)

	var body youtubeSearchResponse
	if err := f.getJSON(ctx, "/search", params, &body); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(body.Items))
	for _, item := range body.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

func (f *VideoFetcher) videoDetails(ctx context.Context, ids []string) ([]platform.RawItem, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", f.apiKey)

	var body youtubeVideosResponse
	if err := f.getJSON(ctx, "/videos", params, &body); err != nil {
		return nil, err
	}

	items := make([]platform.RawItem, 0, len(body.Items))
	for _, v := range body.Items {
		item := platform.RawItem{
			Platform: platform.Video,
			URL:      "https://www.youtube.com/watch?v=" + v.ID,
			Title:    v.Snippet.Title,
			Author:   v.Snippet.ChannelTitle,
			Body:     v.Snippet.Description,
			Metrics: platform.RawMetrics{
				Views:    atoiOrZero(v.Statistics.ViewCount),
				Likes:    atoiOrZero(v.Statistics.LikeCount),
				Comments: atoiOrZero(v.Statistics.CommentCount),
			},
		}
		if published, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			item.PublishedAt = &published
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *VideoFetcher) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := f.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return platform.NewFetchError(platform.Video, platform.ReasonNetworkError, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return platform.NewFetchError(platform.Video, classifyTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return platform.NewFetchError(platform.Video, classifyStatus(resp.StatusCode),
			fmt.Errorf("youtube api returned status %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return platform.NewFetchError(platform.Video, platform.ReasonParseError,
			fmt.Errorf("failed to decode youtube response: %w", err))
	}
	return nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
