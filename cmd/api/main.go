package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"news-quiz/api/router"
	"news-quiz/cmd/internal/serve"
	"news-quiz/config"
	"news-quiz/db"
	"news-quiz/eventbus"
	"news-quiz/ingestion"
	"news-quiz/logger"
	"news-quiz/passlock"
	"news-quiz/repositories"
	"news-quiz/services"
	"news-quiz/taxonomy"
)

//go:generate swag init -g main.go -d ./,../../api/handlers,../../dto --instanceName backend --tags newsqa,categories,user-details -o ../../docs --outputTypes go

// @title           News Quiz API
// @version         1.0
// @description     Quiz questions generated from recent news, with per-user category preferences
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	forest, err := taxonomy.Load(cfg.Taxonomy)
	if err != nil {
		logger.Log.Errorf("failed to load taxonomy: %v", err)
		os.Exit(1)
	}
	categoryRepo := repositories.NewCategoryRepository(db.Database())
	if err := categoryRepo.SyncForest(ctx, forest); err != nil {
		logger.Log.Errorf("failed to sync categories: %v", err)
		os.Exit(1)
	}
	qaRepo := repositories.NewNewsQARepository(db.Database())
	userRepo := repositories.NewUserDetailRepository(db.Database())

	bus, err := eventbus.New(cfg.Kafka)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	updateNews, closeLock := newUpdateNewsService(ctx, cfg, forest, qaRepo, bus)
	defer closeLock()

	r := router.NewBackend(router.Backend{
		NewsQA:         services.NewNewsQAService(qaRepo, categoryRepo, userRepo),
		Categories:     services.NewCategoryService(categoryRepo, qaRepo, userRepo),
		UserDetails:    services.NewUserDetailService(userRepo, categoryRepo),
		UpdateNews:     updateNews,
		Health:         mongoHealth,
		AllowedOrigins: cfg.API.AllowedOrigins,
	})

	if err := serve.Run("api", cfg.API.Addr, r); err != nil {
		logger.Log.Errorf("api server error: %v", err)
		os.Exit(1)
	}
}

// newUpdateNewsService wires update_news. With update_news_async and a real
// broker the request is queued for cmd/ingest; otherwise the pass runs here.
// A misconfigured source only disables update_news.
func newUpdateNewsService(ctx context.Context, cfg config.AppConfig, forest *taxonomy.Forest, store ingestion.QaStore, bus eventbus.EventBus) (*services.UpdateNewsService, func()) {
	if _, noop := bus.(eventbus.NoopBus); cfg.API.UpdateNewsAsync && !noop {
		return services.NewUpdateNewsService(nil).WithQueue(bus, cfg.Kafka.IngestionTopic), func() {}
	}

	source, err := ingestion.NewSource(cfg)
	if err != nil {
		logger.Log.Warnf("update_news disabled: %v", err)
		return services.NewUpdateNewsService(nil), func() {}
	}
	quiz, err := ingestion.NewQuizGenerator(ctx, cfg, forest)
	if err != nil {
		logger.Log.Warnf("update_news disabled: %v", err)
		return services.NewUpdateNewsService(nil), func() {}
	}
	lock, closeLock, err := passlock.New(ctx, cfg.Redis)
	if err != nil {
		logger.Log.Warnf("redis unavailable, ingestion lock disabled: %v", err)
		lock, closeLock = passlock.Noop{}, func() error { return nil }
	}

	opts := append(ingestion.OptionsFromConfig(cfg.Ingestion),
		ingestion.WithPublisher(bus, cfg.Kafka.Topic),
		ingestion.WithLock(lock),
	)
	pipeline := ingestion.NewPipeline(forest, source, quiz, store, opts...)
	return services.NewUpdateNewsService(pipeline), func() { _ = closeLock() }
}

func mongoHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := db.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": "1.0.0"})
}
