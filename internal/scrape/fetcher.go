package scrape

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// Response bodies larger than this are cut off before extraction.
	maxBodyBytes = 4 << 20
)

// Fetcher retrieves a single page and extracts its visible text. Every
// failure mode (unreachable URL, non-HTML response, decode error, empty page)
// collapses into the ok=false outcome; callers cannot and need not tell them
// apart.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// FetchText returns the extracted text of url, or ok=false when the URL
// yielded nothing usable. It never returns an error.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		logutil.GetLogger(ctx).Debug("page fetch failed", zap.String("url", url), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logutil.GetLogger(ctx).Debug("page fetch non-2xx", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return "", false
	}
	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ctype, "text/html") && !strings.Contains(ctype, "application/xhtml+xml") {
		return "", false
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), ctype)
	if err != nil {
		return "", false
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", false
	}
	text := ExtractVisibleText(string(body))
	if text == "" {
		return "", false
	}
	return text, true
}
