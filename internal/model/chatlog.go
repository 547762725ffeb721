package model

import "time"

const (
	RouteRAG = "rag"
	RouteLLM = "llm"
)

// ChatLogEntry is an append-only audit record of one answered question.
// RetrievedDocuments holds the hits actually used to ground the answer, not
// everything retrieval found. Route is empty for the non-routed query path.
type ChatLogEntry struct {
	Question           string         `json:"question"`
	Answer             string         `json:"answer"`
	Route              string         `json:"route,omitempty"`
	RetrievedDocuments []RetrievalHit `json:"retrieved_documents"`
	CreatedAt          time.Time      `json:"created_at"`
}
