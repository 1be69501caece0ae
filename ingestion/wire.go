package ingestion

import (
	"context"
	"fmt"
	"os"
	"time"

	"news-quiz/articles"
	"news-quiz/config"
	"news-quiz/httpclient"
	"news-quiz/llm"
	"news-quiz/processor"
	"news-quiz/quizclient"
	"news-quiz/renderer"
	"news-quiz/taxonomy"
)

// NewSource builds the configured article source.
func NewSource(cfg config.AppConfig) (articles.Source, error) {
	hc := httpclient.New(httpclient.Config{Timeout: cfg.Ingestion.RequestTimeout})
	switch cfg.Ingestion.Source {
	case "eventregistry":
		apiKey := os.Getenv("EVENT_REGISTRY_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("EVENT_REGISTRY_API_KEY environment variable is not set")
		}
		return articles.NewEventRegistryClient(apiKey, cfg.EventRegistry.BaseURL, hc), nil
	case "rss":
		src := articles.NewRSSSource(hc)
		if cfg.Ingestion.RenderPages {
			src.WithRenderer(renderer.NewChrome(cfg.Ingestion.RequestTimeout))
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported article source: %s", cfg.Ingestion.Source)
	}
}

// NewQuizGenerator returns a quizclient.Client when ingestion.quiz_endpoint is
// set, otherwise an in-process processor.Service.
func NewQuizGenerator(ctx context.Context, cfg config.AppConfig, forest *taxonomy.Forest) (QuizGenerator, error) {
	if cfg.Ingestion.QuizEndpoint != "" {
		return quizclient.New(cfg.Ingestion.QuizEndpoint, httpclient.New(httpclient.Config{Timeout: cfg.LLM.Timeout})), nil
	}
	completer, err := llm.NewFromConfig(ctx, cfg.LLM, httpclient.New(httpclient.Config{Timeout: cfg.LLM.Timeout}))
	if err != nil {
		return nil, err
	}
	return processor.NewService(completer, forest, cfg.LLM.ModelName, processor.WithStrictParse(cfg.Processor.StrictParse)), nil
}

// OptionsFromConfig maps the ingestion section to pipeline options.
func OptionsFromConfig(cfg config.IngestionConfig) []Option {
	return []Option{
		WithWindow(time.Duration(cfg.RecencyDays) * 24 * time.Hour),
		WithMaxItems(cfg.BatchSize),
		WithAbortOnQuizFailure(cfg.AbortOnQuizFailure),
	}
}
