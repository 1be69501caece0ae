package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"

	"news-quiz/api/router"
	"news-quiz/cmd/internal/serve"
	"news-quiz/config"
	"news-quiz/httpclient"
	"news-quiz/llm"
	"news-quiz/logger"
	"news-quiz/processor"
	"news-quiz/taxonomy"
)

//go:generate swag init -g main.go -d ./,../../api/handlers,../../dto,../../processor --instanceName processor --tags process,health -o ../../docs --outputTypes go

// @title           News Quiz Processor API
// @version         1.0
// @description     Categorization, quiz generation and summarization of news text
// @BasePath        /
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)
	gin.SetMode(gin.ReleaseMode)

	forest, err := taxonomy.Load(cfg.Taxonomy)
	if err != nil {
		logger.Log.Errorf("failed to load taxonomy: %v", err)
		os.Exit(1)
	}
	if len(forest.Roots()) == 0 {
		logger.Log.Error("no taxonomy configured in config.yaml (key: taxonomy)")
		os.Exit(1)
	}

	completer, err := llm.NewFromConfig(context.Background(), cfg.LLM, httpclient.New(httpclient.Config{Timeout: cfg.LLM.Timeout}))
	if err != nil {
		logger.Log.Errorf("failed to create LLM client: %v", err)
		os.Exit(1)
	}

	svc := processor.NewService(completer, forest, cfg.LLM.ModelName, processor.WithStrictParse(cfg.Processor.StrictParse))
	logger.Log.Infof("processor ready - provider:%s model:%s strict:%t categories:%d",
		cfg.LLM.Provider, cfg.LLM.ModelName, cfg.Processor.StrictParse, len(forest.Nodes()))

	if err := serve.Run("processor", cfg.Processor.Addr, router.NewProcessor(svc)); err != nil {
		logger.Log.Errorf("processor server error: %v", err)
		os.Exit(1)
	}
}
