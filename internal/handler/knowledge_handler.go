package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/knowbase/internal/pkg/errcode"
	"github.com/xxxsen/knowbase/internal/pkg/response"
	"github.com/xxxsen/knowbase/internal/service"
)

type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
}

func NewKnowledgeHandler(knowledge *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

type storeRequest struct {
	Text   string `json:"text"`
	Entity string `json:"entity"`
	Slot   string `json:"slot"`
	Type   string `json:"type"`
}

func (h *KnowledgeHandler) Store(c *gin.Context) {
	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Text == "" {
		response.Error(c, errcode.ErrInvalid, "text is required")
		return
	}
	doc, err := h.knowledge.EmbedAndStore(c.Request.Context(), req.Text, req.Entity, req.Slot, req.Type)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": doc.ID, "created_at": doc.CreatedAt})
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	limit := uint(0)
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			response.Error(c, errcode.ErrInvalid, "limit must be a positive integer")
			return
		}
		limit = uint(parsed)
	}
	docs, err := h.knowledge.ListRecent(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"documents": docs})
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, errcode.ErrInvalid, "id is required")
		return
	}
	if err := h.knowledge.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
