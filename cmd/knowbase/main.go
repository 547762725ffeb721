package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/knowbase/internal/ai"
	"github.com/xxxsen/knowbase/internal/config"
	"github.com/xxxsen/knowbase/internal/db"
	"github.com/xxxsen/knowbase/internal/handler"
	"github.com/xxxsen/knowbase/internal/job"
	"github.com/xxxsen/knowbase/internal/middleware"
	"github.com/xxxsen/knowbase/internal/repo"
	"github.com/xxxsen/knowbase/internal/schedule"
	"github.com/xxxsen/knowbase/internal/scrape"
	"github.com/xxxsen/knowbase/internal/search"
	"github.com/xxxsen/knowbase/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "knowbase",
		Short: "knowledge store with RAG question answering",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run knowbase server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn, cfg.AI.EmbedDims); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sqlx.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("embed_model", cfg.AI.EmbedModel),
	)

	knowledgeRepo := repo.NewKnowledgeRepo(conn)
	chatLogRepo := repo.NewChatLogRepo(conn)

	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.EmbedModel)
	generator := ai.NewGenerator(provider, cfg.AI.Model)
	aiTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	knowledgeService := service.NewKnowledgeService(knowledgeRepo, embedder, aiTimeout)
	chatService := service.NewChatService(embedder, generator, knowledgeRepo, chatLogRepo, cfg.Chat.TopK, aiTimeout)

	fetcher := scrape.NewFetcher(time.Duration(cfg.Ingest.FetchTimeoutSeconds) * time.Second)
	searcher := search.NewDuckDuckGo()
	ingestService := service.NewIngestService(searcher, fetcher, knowledgeService, service.IngestOptions{
		MaxTextChars: cfg.Ingest.MaxTextChars,
		Workers:      cfg.Ingest.Workers,
		PaceInterval: time.Duration(cfg.Ingest.PaceMillis) * time.Millisecond,
	})

	deps := handler.RouterDeps{
		Knowledge:       handler.NewKnowledgeHandler(knowledgeService),
		Chat:            handler.NewChatHandler(chatService, cfg.Chat.DefaultThreshold),
		Ingest:          handler.NewIngestHandler(ingestService, cfg.Ingest.MaxResults),
		RateLimitWindow: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if len(cfg.Ingest.Refresh.Queries) > 0 {
		refreshJob := job.NewIngestRefreshJob(ingestService, cfg.Ingest.Refresh.Queries)
		if err := scheduler.AddJob(refreshJob, cfg.Ingest.Refresh.Spec); err != nil {
			return fmt.Errorf("schedule ingest refresh: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
