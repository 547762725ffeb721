package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/knowbase/internal/model"
	"github.com/xxxsen/knowbase/internal/repo"
	"github.com/xxxsen/knowbase/internal/testutil"
)

func TestChatLogRepoAppendAndList(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	logs := repo.NewChatLogRepo(conn)

	require.NoError(t, logs.Append(context.Background(), &model.ChatLogEntry{
		Question: "What is the warranty period?",
		Answer:   "2 years",
		Route:    model.RouteRAG,
		RetrievedDocuments: []model.RetrievalHit{
			{Text: "Warranty: 2 years", Entity: "acme", Score: 0.91},
		},
	}))
	require.NoError(t, logs.Append(context.Background(), &model.ChatLogEntry{
		Question: "Unrelated?",
		Answer:   "Not enough information.",
		Route:    model.RouteLLM,
	}))

	entries, err := logs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	require.Equal(t, "Unrelated?", entries[0].Question)
	require.Equal(t, model.RouteLLM, entries[0].Route)
	require.Empty(t, entries[0].RetrievedDocuments)

	require.Equal(t, model.RouteRAG, entries[1].Route)
	require.Len(t, entries[1].RetrievedDocuments, 1)
	require.InDelta(t, 0.91, entries[1].RetrievedDocuments[0].Score, 1e-9)
}
