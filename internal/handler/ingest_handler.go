package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/knowbase/internal/pkg/errcode"
	"github.com/xxxsen/knowbase/internal/pkg/response"
	"github.com/xxxsen/knowbase/internal/service"
)

type IngestHandler struct {
	ingest     *service.IngestService
	maxResults int
}

func NewIngestHandler(ingest *service.IngestService, maxResults int) *IngestHandler {
	return &IngestHandler{ingest: ingest, maxResults: maxResults}
}

type ingestSearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	Store bool   `json:"store"`
}

type ingestScrapeRequest struct {
	Query string   `json:"query"`
	URLs  []string `json:"urls"`
	Store bool     `json:"store"`
}

func (h *IngestHandler) Search(c *gin.Context) {
	var req ingestSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	k := req.K
	if k <= 0 || k > h.maxResults {
		k = h.maxResults
	}
	result, err := h.ingest.IngestQuery(c.Request.Context(), req.Query, k, req.Store)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *IngestHandler) Scrape(c *gin.Context) {
	var req ingestScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if len(req.URLs) == 0 {
		response.Error(c, errcode.ErrInvalid, "urls are required")
		return
	}
	result := h.ingest.ScrapeURLs(c.Request.Context(), req.Query, req.URLs, req.Store)
	response.Success(c, result)
}
