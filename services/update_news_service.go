package services

import (
	"context"
	"errors"
	"fmt"

	"news-quiz/eventbus"
	"news-quiz/events"
	"news-quiz/ingestion"
)

// ErrIngestionUnavailable is returned when neither a local pipeline nor an
// event bus is configured.
var ErrIngestionUnavailable = errors.New("ingestion is not configured")

// PassRunner is implemented by ingestion.Pipeline.
type PassRunner interface {
	RunPass(ctx context.Context) (ingestion.Stats, error)
}

// UpdateNewsService runs one ingestion pass for the update_news endpoint,
// either in-process or by publishing an ingestion request.
type UpdateNewsService struct {
	runner PassRunner
	bus    eventbus.Publisher
	topic  string
}

func NewUpdateNewsService(runner PassRunner) *UpdateNewsService {
	return &UpdateNewsService{runner: runner}
}

// WithQueue makes UpdateNews publish to topic instead of running the pass.
func (s *UpdateNewsService) WithQueue(bus eventbus.Publisher, topic string) *UpdateNewsService {
	s.bus = bus
	s.topic = topic
	return s
}

// UpdateNews returns the pass stats, or queued=true when the request was
// handed to the ingest worker.
func (s *UpdateNewsService) UpdateNews(ctx context.Context, requestedBy string) (stats *ingestion.Stats, queued bool, err error) {
	if s.bus != nil {
		evt := events.IngestionRequestedEvent{
			BaseEvent:   events.NewBaseEvent(events.IngestionRequested, "api"),
			RequestedBy: requestedBy,
		}
		if err := eventbus.PublishDomainEvent(ctx, s.bus, s.topic, evt.ID, evt); err != nil {
			return nil, false, fmt.Errorf("queue ingestion request: %w", err)
		}
		return nil, true, nil
	}
	if s.runner == nil {
		return nil, false, ErrIngestionUnavailable
	}
	st, err := s.runner.RunPass(ctx)
	if err != nil {
		return &st, false, err
	}
	return &st, false, nil
}
