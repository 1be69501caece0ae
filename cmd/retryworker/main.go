package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"news-quiz/config"
	"news-quiz/eventbus"
	"news-quiz/logger"
)

// retryworker 는 모든 토픽의 지연 토픽을 기본 토픽으로 재주입한다.
// cmd/ingest -consume 도 수집 토픽의 재주입기를 함께 돌리므로, 이 워커는
// 재주입만 따로 확장할 때 쓴다.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokers := eventbus.Brokers(cfg.Kafka)
	if brokers == "" {
		logger.Log.Error("kafka.bootstrap_servers (or KAFKA_BOOTSTRAP_SERVERS) is required")
		os.Exit(1)
	}
	topics := eventbus.AllTopics(cfg.Kafka)
	if err := eventbus.EnsureTopics(ctx, brokers, topics, 3); err != nil {
		logger.Log.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	logger.Log.Info("starting retry worker...")
	for _, t := range topics {
		topic := t
		go func() {
			groupID := cfg.Kafka.GroupID + "-retry-worker-" + strings.ReplaceAll(topic.Base(), ".", "-")
			if err := bus.StartRetryReinjector(ctx, groupID, topic); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Errorf("retry reinjector error for %s: %v", topic.Base(), err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Log.Info("received shutdown signal, shutting down retry worker...")
	cancel()
	logger.Log.Info("retry worker stopped")
}
