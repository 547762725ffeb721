package repo

import (
	"context"
	"errors"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/knowbase/internal/model"
)

type KnowledgeRepo struct {
	db *sqlx.DB
}

func NewKnowledgeRepo(db *sqlx.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Insert stores one document and returns the store-assigned id. Documents are
// never updated in place; the creation timestamp comes from the database.
func (r *KnowledgeRepo) Insert(ctx context.Context, doc *model.KnowledgeDocument) (string, error) {
	const query = `
		INSERT INTO knowledge_documents (text, entity, slot, knowledge_type, embedding)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	row := r.db.QueryRowContext(ctx, query,
		doc.Text,
		doc.Entity,
		doc.Slot,
		doc.KnowledgeType,
		pgvector.NewVector(doc.Embedding),
	)
	var id string
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		return "", err
	}
	doc.ID = id
	doc.CreatedAt = createdAt.UTC()
	return id, nil
}

// SimilaritySearch returns the closest documents to vector, best match first.
// Cosine distance is folded into a [0,1] score. An empty table yields an
// empty slice, not an error.
func (r *KnowledgeRepo) SimilaritySearch(ctx context.Context, vector []float32, limit int) ([]model.RetrievalHit, error) {
	const query = `
		SELECT text, entity, slot, GREATEST(1 - (embedding <=> $1), 0) AS score
		FROM knowledge_documents
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hits []model.RetrievalHit
	for rows.Next() {
		var hit model.RetrievalHit
		if err := rows.Scan(&hit.Text, &hit.Entity, &hit.Slot, &hit.Score); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (r *KnowledgeRepo) ListRecent(ctx context.Context, limit uint) ([]model.KnowledgeDocument, error) {
	where := map[string]interface{}{
		"_orderby": "created_at desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("knowledge_documents",
		where, []string{"id", "text", "entity", "slot", "knowledge_type", "created_at"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(sqlStr), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.KnowledgeDocument
	for rows.Next() {
		var doc model.KnowledgeDocument
		var createdAt time.Time
		if err := rows.Scan(&doc.ID, &doc.Text, &doc.Entity, &doc.Slot, &doc.KnowledgeType, &createdAt); err != nil {
			return nil, err
		}
		doc.CreatedAt = createdAt.UTC()
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes one document by id and reports whether it existed.
func (r *KnowledgeRepo) Delete(ctx context.Context, id string) (bool, error) {
	sqlStr, args, err := builder.BuildDelete("knowledge_documents", map[string]interface{}{"id": id})
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	if err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// 22P02 is postgres invalid_text_representation, raised for malformed uuid
// literals. A malformed id is just "not found" to callers.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "22P02"
	}
	return false
}
