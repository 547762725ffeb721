package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/knowbase/internal/pkg/errcode"
	appErr "github.com/xxxsen/knowbase/internal/pkg/errors"
	"github.com/xxxsen/knowbase/internal/pkg/response"
)

// handleError funnels service errors into response codes. Every branch keeps
// the human-readable cause so callers can tell which stage failed.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, err.Error())
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrNoSearchResults):
		response.Error(c, errcode.ErrNoSearchResults, err.Error())
	case errors.Is(err, appErr.ErrEmbedding):
		response.Error(c, errcode.ErrEmbeddingFailed, err.Error())
	case errors.Is(err, appErr.ErrCompletion):
		response.Error(c, errcode.ErrCompletionFailed, err.Error())
	case errors.Is(err, appErr.ErrStorage):
		response.Error(c, errcode.ErrStorageFailed, err.Error())
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
