package model

// IngestItem is the per-URL outcome of one ingestion run. Exactly one of
// Text/FetchError is meaningful: a URL that yielded no usable page carries a
// FetchError and nothing else.
type IngestItem struct {
	URL        string `json:"url"`
	Text       string `json:"text,omitempty"`
	FetchError string `json:"fetch_error,omitempty"`
	Stored     bool   `json:"stored"`
	StoreError string `json:"store_error,omitempty"`
}

// IngestResult summarizes one ingestion batch. Documents preserves the order
// of the attempted URL list, one entry per URL.
type IngestResult struct {
	Query     string       `json:"query"`
	URLs      []string     `json:"urls"`
	Fetched   int          `json:"fetched"`
	Stored    int          `json:"stored"`
	Documents []IngestItem `json:"documents"`
}
