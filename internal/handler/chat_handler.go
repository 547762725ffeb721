package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/knowbase/internal/pkg/errcode"
	"github.com/xxxsen/knowbase/internal/pkg/response"
	"github.com/xxxsen/knowbase/internal/service"
)

type ChatHandler struct {
	chat             *service.ChatService
	defaultThreshold float64
}

func NewChatHandler(chat *service.ChatService, defaultThreshold float64) *ChatHandler {
	return &ChatHandler{chat: chat, defaultThreshold: defaultThreshold}
}

type chatQueryRequest struct {
	Question string `json:"question"`
}

type chatRouteRequest struct {
	Question  string   `json:"question"`
	Threshold *float64 `json:"threshold"`
}

func (h *ChatHandler) Query(c *gin.Context) {
	var req chatQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Question == "" {
		response.Error(c, errcode.ErrInvalid, "question is required")
		return
	}
	answer, hits, err := h.chat.Answer(c.Request.Context(), req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"answer":              answer,
		"retrieved_documents": hits,
	})
}

func (h *ChatHandler) Route(c *gin.Context) {
	var req chatRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Question == "" {
		response.Error(c, errcode.ErrInvalid, "question is required")
		return
	}
	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		response.Error(c, errcode.ErrInvalid, "threshold must be in [0,1]")
		return
	}
	answer, used, route, err := h.chat.RouteAndAnswer(c.Request.Context(), req.Question, threshold)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"answer":              answer,
		"retrieved_documents": used,
		"route":               route,
	})
}

func (h *ChatHandler) Logs(c *gin.Context) {
	limit := uint(0)
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			response.Error(c, errcode.ErrInvalid, "limit must be a positive integer")
			return
		}
		limit = uint(parsed)
	}
	entries, err := h.chat.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"logs": entries})
}
