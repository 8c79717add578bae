package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscope/internal/domain/platform"
)

func TestForumFetcherParsesSearchResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "side hustle", r.URL.Query().Get("q"))
		assert.Equal(t, "week", r.URL.Query().Get("t"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"title":"My side hustle story","permalink":"/r/sidehustle/comments/abc/story/","score":340,"num_comments":52,"created_utc":1718000000,"selftext":"long story","author":"storyteller"}},
			{"data":{"title":"Pinned rules","permalink":"/r/sidehustle/comments/rules/","score":1,"num_comments":0,"created_utc":1718000000,"author":"mod","stickied":true}}
		]}}`)
	}))
	defer server.Close()

	f := NewForumFetcher("")
	f.baseURL = server.URL

	items, err := f.Fetch(context.Background(), "side hustle", platform.FetchOptions{MaxItems: 25, TimeRange: platform.Range7d})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, platform.Forum, item.Platform)
	assert.Equal(t, server.URL+"/r/sidehustle/comments/abc/story/", item.URL)
	assert.Equal(t, "My side hustle story", item.Title)
	assert.Equal(t, "storyteller", item.Author)
	assert.Equal(t, 340, item.Metrics.Upvotes)
	assert.Equal(t, 52, item.Metrics.Comments)
	require.NotNil(t, item.PublishedAt)
}

func TestForumFetcherClassifiesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewForumFetcher("")
	f.baseURL = server.URL

	_, err := f.Fetch(context.Background(), "x", platform.FetchOptions{TimeRange: platform.Range24h})
	var fe *platform.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, platform.Forum, fe.Platform)
	assert.Equal(t, platform.ReasonRateLimited, fe.Reason)
}

func TestVideoFetcherSearchThenDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "video", r.URL.Query().Get("type"))
			assert.NotEmpty(t, r.URL.Query().Get("publishedAfter"))
			fmt.Fprint(w, `{"items":[{"id":{"videoId":"vid123"}}]}`)
		case "/videos":
			assert.Equal(t, "vid123", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"items":[{
				"id":"vid123",
				"snippet":{"title":"AI tools explained","description":"a walkthrough","channelTitle":"TechChannel","publishedAt":"2025-06-10T08:00:00Z"},
				"statistics":{"viewCount":"12000","likeCount":"800","commentCount":"95"}
			}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	f := NewVideoFetcher("test-key")
	f.baseURL = server.URL

	items, err := f.Fetch(context.Background(), "ai tools", platform.FetchOptions{MaxItems: 10, TimeRange: platform.Range7d})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, platform.Video, item.Platform)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid123", item.URL)
	assert.Equal(t, "TechChannel", item.Author)
	assert.Equal(t, 12000, item.Metrics.Views)
	assert.Equal(t, 800, item.Metrics.Likes)
	assert.Equal(t, 95, item.Metrics.Comments)
	require.NotNil(t, item.PublishedAt)
}

func TestVideoFetcherEmptySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	f := NewVideoFetcher("test-key")
	f.baseURL = server.URL

	items, err := f.Fetch(context.Background(), "nothing", platform.FetchOptions{TimeRange: platform.Range24h})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVideoFetcherBlockedKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewVideoFetcher("revoked")
	f.baseURL = server.URL

	_, err := f.Fetch(context.Background(), "x", platform.FetchOptions{TimeRange: platform.Range24h})
	var fe *platform.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, platform.ReasonBlocked, fe.Reason)
}

func TestSearchFetcherParsesResults(t *testing.T) {
	page := `<html><body>
		<form action="/html/"></form>
		<div class="result">
			<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fguide">Passive income guide</a>
			<a class="result__snippet">A long snippet about passive income strategies.</a>
		</div>
		<div class="result">
			<a class="result__a" href="https://example.org/direct">Direct link result</a>
			<a class="result__snippet">Another snippet.</a>
		</div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "passive income", r.URL.Query().Get("q"))
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	f := NewSearchFetcher("")
	f.baseURL = server.URL

	items, err := f.Fetch(context.Background(), "passive income", platform.FetchOptions{MaxItems: 10, TimeRange: platform.Range7d})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "https://example.com/guide", items[0].URL)
	assert.Equal(t, "Passive income guide", items[0].Title)
	assert.Equal(t, "A long snippet about passive income strategies.", items[0].Body)
	assert.Equal(t, "https://example.org/direct", items[1].URL)
	assert.Nil(t, items[0].PublishedAt)
	assert.Zero(t, items[0].Metrics)
}

func TestSearchFetcherDetectsBlockPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="challenge">verify you are human</div></body></html>`)
	}))
	defer server.Close()

	f := NewSearchFetcher("")
	f.baseURL = server.URL

	_, err := f.Fetch(context.Background(), "x", platform.FetchOptions{TimeRange: platform.Range7d})
	var fe *platform.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, platform.ReasonBlocked, fe.Reason)
}

func TestSearchFetcherLimit(t *testing.T) {
	var page string
	page = "<html><body><form></form>"
	for i := 0; i < 10; i++ {
		page += fmt.Sprintf(`<div class="result"><a class="result__a" href="https://example.com/%d">Result %d</a></div>`, i, i)
	}
	page += "</body></html>"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	f := NewSearchFetcher("")
	f.baseURL = server.URL

	items, err := f.Fetch(context.Background(), "x", platform.FetchOptions{MaxItems: 3, TimeRange: platform.Range7d})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, platform.ReasonRateLimited, classifyStatus(http.StatusTooManyRequests))
	assert.Equal(t, platform.ReasonBlocked, classifyStatus(http.StatusForbidden))
	assert.Equal(t, platform.ReasonBlocked, classifyStatus(http.StatusUnauthorized))
	assert.Equal(t, platform.ReasonNetworkError, classifyStatus(http.StatusBadGateway))
}

func TestClassifyTransportTimeout(t *testing.T) {
	assert.Equal(t, platform.ReasonTimeout, classifyTransport(context.DeadlineExceeded))
	assert.Equal(t, platform.ReasonNetworkError, classifyTransport(errors.New("connection refused")))
}

func TestClassifyTwitterError(t *testing.T) {
	apiErr := &twitter.ErrorResponse{StatusCode: http.StatusTooManyRequests}
	assert.Equal(t, platform.ReasonRateLimited, classifyTwitterError(apiErr))
	assert.Equal(t, platform.ReasonNetworkError, classifyTwitterError(errors.New("boom")))
}

func TestBearerAuthorizer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://api.twitter.com/2/tweets/search/recent", nil)
	bearerAuthorizer{token: "secret"}.Add(req)
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
}

func TestClampMaxItems(t *testing.T) {
	assert.Equal(t, 25, clampMaxItems(0, 25, 100))
	assert.Equal(t, 100, clampMaxItems(500, 25, 100))
	assert.Equal(t, 7, clampMaxItems(7, 25, 100))
}
