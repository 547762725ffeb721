package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetcherFetchTextOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>hello world</p></body></html>"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(5 * time.Second)
	text, ok := fetcher.FetchText(context.Background(), srv.URL)
	require.True(t, ok)
	require.Equal(t, "hello world", text)
}

func TestFetcherFetchTextFollowsRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<body>landed</body>"))
	}))
	defer target.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer srv.Close()

	fetcher := NewFetcher(5 * time.Second)
	text, ok := fetcher.FetchText(context.Background(), srv.URL)
	require.True(t, ok)
	require.Equal(t, "landed", text)
}

func TestFetcherFetchTextSoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("<body>missing</body>"))
			},
		},
		{
			name: "non-html content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"not": "html"}`))
			},
		},
		{
			name: "no readable text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<body><script>x()</script></body>"))
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			fetcher := NewFetcher(5 * time.Second)
			text, ok := fetcher.FetchText(context.Background(), srv.URL)
			require.False(t, ok)
			require.Equal(t, "", text)
		})
	}
}

func TestFetcherFetchTextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<body>too late</body>"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(50 * time.Millisecond)
	_, ok := fetcher.FetchText(context.Background(), srv.URL)
	require.False(t, ok)
}

func TestFetcherFetchTextUnreachable(t *testing.T) {
	fetcher := NewFetcher(time.Second)
	_, ok := fetcher.FetchText(context.Background(), "http://127.0.0.1:1/nope")
	require.False(t, ok)
}
