package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-quiz/eventbus"
	"news-quiz/events"
	"news-quiz/ingestion"
	"news-quiz/passlock"
	"news-quiz/services"
)

type capturePublisher struct {
	topics []string
	events []eventbus.Event
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() {}

type runnerFunc func(ctx context.Context) (ingestion.Stats, error)

func (f runnerFunc) RunPass(ctx context.Context) (ingestion.Stats, error) { return f(ctx) }

func TestUpdateNewsQueuesIngestionRequest(t *testing.T) {
	pub := &capturePublisher{}
	svc := services.NewUpdateNewsService(nil).WithQueue(pub, "news-quiz.ingestion")

	stats, queued, err := svc.UpdateNews(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, queued)
	assert.Nil(t, stats)

	require.Len(t, pub.events, 1)
	assert.Equal(t, []string{"news-quiz.ingestion"}, pub.topics)
	req, err := eventbus.DecodeJSON[events.IngestionRequestedEvent](pub.events[0])
	require.NoError(t, err)
	assert.Equal(t, events.IngestionRequested, req.Type)
	assert.Equal(t, "u1", req.RequestedBy)
	assert.Equal(t, req.ID, pub.events[0].ID)
}

func TestUpdateNewsWithoutRunnerIsUnavailable(t *testing.T) {
	_, _, err := services.NewUpdateNewsService(nil).UpdateNews(context.Background(), "u1")
	assert.ErrorIs(t, err, services.ErrIngestionUnavailable)
}

func TestUpdateNewsRunsPassInProcess(t *testing.T) {
	svc := services.NewUpdateNewsService(runnerFunc(func(ctx context.Context) (ingestion.Stats, error) {
		return ingestion.Stats{Categories: 3, Created: 2}, nil
	}))
	stats, queued, err := svc.UpdateNews(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Equal(t, 2, stats.Created)

	busy := services.NewUpdateNewsService(runnerFunc(func(ctx context.Context) (ingestion.Stats, error) {
		return ingestion.Stats{}, passlock.ErrLocked
	}))
	_, _, err = busy.UpdateNews(context.Background(), "u1")
	assert.ErrorIs(t, err, passlock.ErrLocked)
}
