package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"news-quiz/config"
	"news-quiz/db"
	"news-quiz/eventbus"
	"news-quiz/events"
	"news-quiz/ingestion"
	"news-quiz/logger"
	"news-quiz/passlock"
	"news-quiz/repositories"
	"news-quiz/taxonomy"
)

// 실행 모드:
//   - 기본: ingestion.schedule 이 비어 있으면 1회 실행 후 종료, 있으면 cron 으로 반복
//   - -consume: kafka 수집 요청 토픽을 구독해 요청마다 1회 실행
func main() {
	once := flag.Bool("once", false, "run a single pass and exit even if a schedule is configured")
	consume := flag.Bool("consume", false, "run a pass for every ingestion request on kafka")
	flag.Parse()

	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	if err := repositories.NewCategoryRepository(db.Database()).SyncForest(ctx, forest); err != nil {
		logger.Log.Errorf("failed to sync categories: %v", err)
		os.Exit(1)
	}

	bus, err := eventbus.New(cfg.Kafka)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	pipeline, closeLock, err := newPipeline(ctx, cfg, forest, bus)
	if err != nil {
		logger.Log.Errorf("failed to build ingestion pipeline: %v", err)
		os.Exit(1)
	}
	defer closeLock()

	switch {
	case *consume:
		err = runConsumer(ctx, cancel, cfg, bus, pipeline)
	case *once || cfg.Ingestion.Schedule == "":
		_, err = pipeline.RunPass(ctx)
	default:
		err = runScheduled(ctx, cfg.Ingestion.Schedule, pipeline)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Errorf("ingest stopped with error: %v", err)
		os.Exit(1)
	}
}

func newPipeline(ctx context.Context, cfg config.AppConfig, forest *taxonomy.Forest, bus eventbus.Publisher) (*ingestion.Pipeline, func(), error) {
	source, err := ingestion.NewSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	quiz, err := ingestion.NewQuizGenerator(ctx, cfg, forest)
	if err != nil {
		return nil, nil, err
	}
	lock, closeLock, err := passlock.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}

	opts := append(ingestion.OptionsFromConfig(cfg.Ingestion),
		ingestion.WithPublisher(bus, cfg.Kafka.Topic),
		ingestion.WithLock(lock),
	)
	store := repositories.NewNewsQARepository(db.Database())
	return ingestion.NewPipeline(forest, source, quiz, store, opts...), func() { _ = closeLock() }, nil
}

// runScheduled runs a pass on every cron tick until a termination signal.
// A tick that finds the previous pass still running is skipped.
func runScheduled(ctx context.Context, schedule string, pipeline *ingestion.Pipeline) error {
	var running sync.Mutex
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if !running.TryLock() {
			logger.Log.Warn("cron skipped: previous ingestion pass still running")
			return
		}
		defer running.Unlock()

		if _, err := pipeline.RunPass(ctx); err != nil {
			if ingestion.IsLocked(err) {
				logger.Log.Warn("cron skipped: another process holds the ingestion lock")
				return
			}
			logger.Log.Errorf("scheduled ingestion pass failed: %v", err)
		}
	}); err != nil {
		return err
	}

	c.Start()
	logger.Log.Infof("ingestion scheduled: %s", schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Log.Info("received shutdown signal, waiting for running pass...")
	<-c.Stop().Done()
	return nil
}

// runConsumer subscribes to ingestion requests. A failed pass is returned to
// the bus, which schedules a delayed retry and finally a DLQ entry. Another
// pass holding the lock counts as done.
func runConsumer(ctx context.Context, cancel context.CancelFunc, cfg config.AppConfig, bus eventbus.EventBus, pipeline *ingestion.Pipeline) error {
	brokers := eventbus.Brokers(cfg.Kafka)
	if brokers == "" {
		return eventbus.ErrNoBroker
	}
	if err := eventbus.EnsureTopics(ctx, brokers, eventbus.AllTopics(cfg.Kafka), 3); err != nil {
		logger.Log.Errorf("failed to ensure eventbus topics: %v", err)
	}

	topic := eventbus.IngestionTopic(cfg.Kafka)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bus.StartRetryReinjector(ctx, cfg.Kafka.GroupID+"-retry", topic); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Errorf("retry reinjector error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := eventbus.SubscribeJSON(ctx, bus, cfg.Kafka.GroupID, topic,
			func(ctx context.Context, req events.IngestionRequestedEvent, meta eventbus.Event) error {
				logger.InfoWithFields("ingestion requested", logger.FromContext(ctx, logger.Fields{
					"event_id":     req.ID,
					"requested_by": req.RequestedBy,
					"retry":        meta.Retry,
				}))
				_, err := pipeline.RunPass(ctx)
				if ingestion.IsLocked(err) {
					return nil
				}
				return err
			})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down ingest consumer...")

	cancel()
	wg.Wait()
	return nil
}
