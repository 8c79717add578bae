package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"trendscope/internal/domain/platform"
)

// MicroblogFetcher pulls recent tweets via the Twitter v2 recent-search
// endpoint. Requires an app bearer token.
type MicroblogFetcher struct {
	client *twitter.Client
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// NewMicroblogFetcher creates a Twitter-backed microblog fetcher.
func NewMicroblogFetcher(bearerToken string) *MicroblogFetcher {
	return &MicroblogFetcher{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     newHTTPClient(),
			Host:       "https://api.twitter.com",
		},
	}
}

func (f *MicroblogFetcher) Platform() platform.Platform { return platform.Microblog }

// Fetch searches recent tweets for the query. The recent-search endpoint
// only reaches back seven days, so the 30d range degrades to that window.
func (f *MicroblogFetcher) Fetch(ctx context.Context, query string, opts platform.FetchOptions) ([]platform.RawItem, error) {
	// Recent search rejects MaxResults outside [10, 100].
	limit := clampMaxItems(opts.MaxItems, 25, 100)
	if limit < 10 {
		limit = 10
	}

	window := opts.TimeRange.Duration()
	if max := 7 * 24 * time.Hour; window > max {
		window = max
	}
	// Leave slack at the old edge; the API rejects start times at the
	// exact boundary.
	startTime := time.Now().Add(-window + time.Minute).UTC()

	searchOpts := twitter.TweetRecentSearchOpts{
		MaxResults: limit,
		StartTime:  startTime,
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldPublicMetrics,
			twitter.TweetFieldAuthorID,
		},
		Expansions: []twitter.Expansion{twitter.ExpansionAuthorID},
	}

	resp, err := f.client.TweetRecentSearch(ctx, query+" -is:retweet lang:en", searchOpts)
	if err != nil {
		return nil, platform.NewFetchError(platform.Microblog, classifyTwitterError(err), err)
	}

	authors := map[string]string{}
	if resp.Raw.Includes != nil {
		for _, user := range resp.Raw.Includes.Users {
			authors[user.ID] = user.UserName
		}
	}

	items := make([]platform.RawItem, 0, len(resp.Raw.Tweets))
	for _, tweet := range resp.Raw.Tweets {
		item := platform.RawItem{
			Platform: platform.Microblog,
			URL:      "https://twitter.com/i/web/status/" + tweet.ID,
			Title:    tweet.Text,
			Author:   authors[tweet.AuthorID],
		}
		if tweet.PublicMetrics != nil {
			item.Metrics = platform.RawMetrics{
				Likes:    tweet.PublicMetrics.Likes,
				Retweets: tweet.PublicMetrics.Retweets + tweet.PublicMetrics.Quotes,
				Replies:  tweet.PublicMetrics.Replies,
			}
		}
		if created, parseErr := time.Parse(time.RFC3339, tweet.CreatedAt); parseErr == nil {
			item.PublishedAt = &created
		}
		items = append(items, item)
	}
	return items, nil
}

func classifyTwitterError(err error) platform.FailureReason {
	var apiErr *twitter.ErrorResponse
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode)
	}
	var rateErr *twitter.HTTPError
	if errors.As(err, &rateErr) {
		return classifyStatus(rateErr.StatusCode)
	}
	return classifyTransport(err)
}
