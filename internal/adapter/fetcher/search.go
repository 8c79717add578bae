package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trendscope/internal/domain/platform"
)

// SearchFetcher scrapes the DuckDuckGo HTML endpoint. Search results
// carry no engagement counters and no timestamps; they contribute reach
// evidence only, which the scoring weights already account for.
type SearchFetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewSearchFetcher creates a DuckDuckGo-backed web search fetcher.
func NewSearchFetcher(userAgent string) *SearchFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &SearchFetcher{
		httpClient: newHTTPClient(),
		baseURL:    "https://html.duckduckgo.com/html/",
		userAgent:  userAgent,
	}
}

func (f *SearchFetcher) Platform() platform.Platform { return platform.Search }

// Fetch scrapes one page of search results for the query.
func (f *SearchFetcher) Fetch(ctx context.Context, query string, opts platform.FetchOptions) ([]platform.RawItem, error) {
	limit := clampMaxItems(opts.MaxItems, 25, 30)

	params := url.Values{}
	params.Set("q", query)
	endpoint := f.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, platform.NewFetchError(platform.Search, platform.ReasonNetworkError, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, platform.NewFetchError(platform.Search, classifyTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, platform.NewFetchError(platform.Search, classifyStatus(resp.StatusCode),
			fmt.Errorf("search returned status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, platform.NewFetchError(platform.Search, platform.ReasonParseError,
			fmt.Errorf("failed to parse search results: %w", err))
	}

	var items []platform.RawItem
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(items) >= limit {
			return false
		}
		anchor := sel.Find(".result__a").First()
		title := strings.TrimSpace(anchor.Text())
		href, ok := anchor.Attr("href")
		if title == "" || !ok {
			return true
		}
		items = append(items, platform.RawItem{
			Platform: platform.Search,
			URL:      resolveResultURL(href),
			Title:    title,
			Body:     strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
		})
		return true
	})

	if len(items) == 0 && doc.Find("form").Length() == 0 {
		// A page with neither results nor the search form is a block or
		// captcha interstitial, not an empty result set.
		return nil, platform.NewFetchError(platform.Search, platform.ReasonBlocked,
			fmt.Errorf("unrecognized results page"))
	}
	return items, nil
}

// resolveResultURL unwraps the redirect links DuckDuckGo wraps results in.
func resolveResultURL(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "" {
		return "https:" + href
	}
	return href
}
