package job

import (
	"context"
	"errors"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/knowbase/internal/config"
	appErr "github.com/xxxsen/knowbase/internal/pkg/errors"
	"github.com/xxxsen/knowbase/internal/service"
)

// IngestRefreshJob periodically re-runs the configured watch queries so the
// knowledge store keeps tracking their sources. A query with no search
// results is skipped, not treated as a job failure.
type IngestRefreshJob struct {
	ingest  *service.IngestService
	queries []config.RefreshQuery
}

func NewIngestRefreshJob(ingest *service.IngestService, queries []config.RefreshQuery) *IngestRefreshJob {
	return &IngestRefreshJob{ingest: ingest, queries: queries}
}

func (j *IngestRefreshJob) Name() string {
	return "ingest_refresh"
}

func (j *IngestRefreshJob) Run(ctx context.Context) error {
	if j.ingest == nil || len(j.queries) == 0 {
		return nil
	}
	var lastErr error
	for _, q := range j.queries {
		result, err := j.ingest.IngestQuery(ctx, q.Query, q.K, q.Store)
		if err != nil {
			if errors.Is(err, appErr.ErrNoSearchResults) {
				logutil.GetLogger(ctx).Warn("refresh query returned nothing", zap.String("query", q.Query))
				continue
			}
			lastErr = err
			logutil.GetLogger(ctx).Error("refresh query failed", zap.String("query", q.Query), zap.Error(err))
			continue
		}
		logutil.GetLogger(ctx).Info("refresh query finished",
			zap.String("query", q.Query),
			zap.Int("fetched", result.Fetched),
			zap.Int("stored", result.Stored),
		)
	}
	return lastErr
}
