package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/knowbase/internal/middleware"
)

type RouterDeps struct {
	Knowledge       *KnowledgeHandler
	Chat            *ChatHandler
	Ingest          *IngestHandler
	RateLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", Health)

	api.POST("/rag/store", deps.Knowledge.Store)
	api.GET("/rag/list", deps.Knowledge.List)
	api.DELETE("/rag/:id", deps.Knowledge.Delete)

	api.POST("/chat/query", deps.Chat.Query)
	api.POST("/chat/route", deps.Chat.Route)
	api.GET("/chat/logs", deps.Chat.Logs)

	ingestGroup := api.Group("")
	ingestGroup.Use(middleware.RateLimit(deps.RateLimitWindow))
	ingestGroup.POST("/ingest/search", deps.Ingest.Search)
	ingestGroup.POST("/ingest/scrape", deps.Ingest.Scrape)
}

func Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
