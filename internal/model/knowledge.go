package model

import "time"

// KnowledgeDocument is one stored unit of evidence. Documents are immutable
// once inserted; replacing content means delete + re-insert.
type KnowledgeDocument struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Entity        string    `json:"entity,omitempty"`
	Slot          string    `json:"slot,omitempty"`
	KnowledgeType string    `json:"type,omitempty"`
	Embedding     []float32 `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// RetrievalHit is a transient projection of a KnowledgeDocument returned by a
// similarity query. Score is in [0,1], higher means more relevant.
type RetrievalHit struct {
	Text   string  `json:"text"`
	Entity string  `json:"entity,omitempty"`
	Slot   string  `json:"slot,omitempty"`
	Score  float64 `json:"score"`
}
