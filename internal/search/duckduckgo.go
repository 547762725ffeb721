package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML search endpoint, which needs no API key. Result
// links are wrapped in a redirect whose uddg parameter carries the target URL.
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
}

type Option func(*DuckDuckGo)

func WithBaseURL(baseURL string) Option {
	return func(d *DuckDuckGo) {
		d.baseURL = baseURL
	}
}

func WithClient(client *http.Client) Option {
	return func(d *DuckDuckGo) {
		d.client = client
	}
}

func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	d := &DuckDuckGo{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultDuckDuckGoURL,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, k int) ([]string, error) {
	endpoint := d.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var urls []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		if target := unwrapRedirect(href); target != "" {
			urls = append(urls, target)
		}
		return len(urls) < k
	})
	return urls, nil
}

func unwrapRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if parsed.IsAbs() && strings.HasPrefix(parsed.Scheme, "http") {
		return href
	}
	return ""
}
