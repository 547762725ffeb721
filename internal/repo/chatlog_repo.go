package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/knowbase/internal/model"
)

type ChatLogRepo struct {
	db *sqlx.DB
}

func NewChatLogRepo(db *sqlx.DB) *ChatLogRepo {
	return &ChatLogRepo{db: db}
}

// Append writes one audit record. Entries are never updated or deleted here.
func (r *ChatLogRepo) Append(ctx context.Context, entry *model.ChatLogEntry) error {
	hits := entry.RetrievedDocuments
	if hits == nil {
		hits = []model.RetrievalHit{}
	}
	blob, err := json.Marshal(hits)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"question":            entry.Question,
		"answer":              entry.Answer,
		"route":               entry.Route,
		"retrieved_documents": blob,
	}
	sqlStr, args, err := builder.BuildInsert("chat_logs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	return err
}

func (r *ChatLogRepo) ListRecent(ctx context.Context, limit uint) ([]model.ChatLogEntry, error) {
	where := map[string]interface{}{
		"_orderby": "created_at desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("chat_logs",
		where, []string{"question", "answer", "route", "retrieved_documents", "created_at"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(sqlStr), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.ChatLogEntry
	for rows.Next() {
		var entry model.ChatLogEntry
		var blob []byte
		var createdAt time.Time
		if err := rows.Scan(&entry.Question, &entry.Answer, &entry.Route, &blob, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(blob, &entry.RetrievedDocuments); err != nil {
			return nil, err
		}
		entry.CreatedAt = createdAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
