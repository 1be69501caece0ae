package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"news-quiz/articles"
	"news-quiz/config"
	"news-quiz/eventbus"
	"news-quiz/events"
	"news-quiz/models"
	"news-quiz/passlock"
	"news-quiz/processor"
	"news-quiz/taxonomy"
)

type fakeSource struct {
	byURI   map[string][]articles.Article
	failURI string
	queries []articles.Query
}

func (s *fakeSource) Query(ctx context.Context, q articles.Query) ([]articles.Article, error) {
	s.queries = append(s.queries, q)
	if q.CategoryURI == s.failURI {
		return nil, errors.New("source unavailable")
	}
	return s.byURI[q.CategoryURI], nil
}

type fakeQuiz struct {
	calls   int
	replies map[string]string // body -> raw reply
	fail    map[string]bool
}

func (f *fakeQuiz) GenerateQuiz(ctx context.Context, text string) (*processor.Result, error) {
	f.calls++
	if f.fail[text] {
		return nil, errors.New("connection refused")
	}
	raw, ok := f.replies[text]
	if !ok {
		raw = validQuiz
	}
	return processor.Parse(raw, processor.TaskQuiz), nil
}

type memStore struct {
	mu    sync.Mutex
	byURI map[string]*models.NewsQA
}

func newMemStore() *memStore { return &memStore{byURI: map[string]*models.NewsQA{}} }

func (m *memStore) ExistsByURI(ctx context.Context, uri string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byURI[uri]
	return ok, nil
}

func (m *memStore) InsertIfAbsent(ctx context.Context, q *models.NewsQA) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byURI[*q.URI]; ok {
		return false, nil
	}
	q.ID = primitive.NewObjectID()
	m.byURI[*q.URI] = q
	return true, nil
}

type recordingBus struct {
	topics []string
	events []eventbus.Event
}

func (b *recordingBus) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	b.topics = append(b.topics, topic)
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) Close() {}

type busyLock struct{}

func (busyLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	return nil, passlock.ErrLocked
}

const validQuiz = `{"question":"Who won the final?","choices":{"A":"Team A","B":"Team B","C":"Team C","D":"Team D"},"correct_answer":"B","explanation":"Team B won 2-1."}`

func forest() *taxonomy.Forest {
	return taxonomy.MustLoad([]config.CategoryDef{
		{ID: 1, Name: "Sports", URI: "news/Sports", Subcategories: []config.SubcategoryDef{{ID: 2, Name: "Football", URI: "news/Football"}}},
		{ID: 3, Name: "Business", URI: "news/Business"},
	})
}

func TestRunPassCreatesOnceAndSkipsOnSecondPass(t *testing.T) {
	src := &fakeSource{byURI: map[string][]articles.Article{
		"news/Sports": {{URI: "art-1", Body: "Team B won the final."}},
	}}
	quiz := &fakeQuiz{}
	store := newMemStore()
	p := NewPipeline(forest(), src, quiz, store)

	stats, err := p.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Categories: 2, Fetched: 1, Created: 1}, stats)

	qa := store.byURI["art-1"]
	require.NotNil(t, qa)
	assert.EqualValues(t, 1, qa.CategoryID)
	assert.Equal(t, "Who won the final?", qa.Question)
	assert.Equal(t, "B", qa.Answer)
	assert.Equal(t, "Team B won 2-1.", qa.Description)
	assert.Equal(t, "Team B won the final.", qa.Paragraph)
	assert.Len(t, qa.Options, 4)

	stats, err = p.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, quiz.calls)
	assert.Len(t, store.byURI, 1)
}

func TestRunPassQueriesRootsOnlyWithWindowAndLimit(t *testing.T) {
	src := &fakeSource{}
	p := NewPipeline(forest(), src, &fakeQuiz{}, newMemStore())

	_, err := p.RunPass(context.Background())
	require.NoError(t, err)

	require.Len(t, src.queries, 2)
	assert.Equal(t, "news/Sports", src.queries[0].CategoryURI)
	assert.Equal(t, "news/Business", src.queries[1].CategoryURI)
	for _, q := range src.queries {
		assert.Equal(t, DefaultWindow, q.Window)
		assert.Equal(t, DefaultMaxItems, q.MaxItems)
	}
}

func TestRunPassDropsMalformedAndFailedQuizzes(t *testing.T) {
	src := &fakeSource{byURI: map[string][]articles.Article{
		"news/Sports": {
			{URI: "bad-json", Body: "bad"},
			{URI: "three-choices", Body: "short"},
			{URI: "offline", Body: "offline"},
			{URI: "ok", Body: "ok"},
		},
	}}
	quiz := &fakeQuiz{
		replies: map[string]string{
			"bad":   "not json at all",
			"short": `{"question":"Q","choices":{"A":"1","B":"2","C":"3"},"correct_answer":"A","explanation":""}`,
		},
		fail: map[string]bool{"offline": true},
	}
	store := newMemStore()

	stats, err := NewPipeline(forest(), src, quiz, store).RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Dropped)
	assert.Equal(t, 1, stats.Created)
	assert.Contains(t, store.byURI, "ok")
	assert.NotContains(t, store.byURI, "bad-json")
}

func TestRunPassAbortsOnQuizFailureWhenConfigured(t *testing.T) {
	src := &fakeSource{byURI: map[string][]articles.Article{
		"news/Sports":   {{URI: "ok", Body: "ok"}, {URI: "offline", Body: "offline"}, {URI: "later", Body: "later"}},
		"news/Business": {{URI: "biz", Body: "biz"}},
	}}
	quiz := &fakeQuiz{fail: map[string]bool{"offline": true}}
	store := newMemStore()

	opts := OptionsFromConfig(config.IngestionConfig{AbortOnQuizFailure: true})
	stats, err := NewPipeline(forest(), src, quiz, store, opts...).RunPass(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, stats.Created)
	assert.Zero(t, stats.Dropped)
	assert.Contains(t, store.byURI, "ok")
	assert.NotContains(t, store.byURI, "later")
	// Business 는 조회되지 않는다.
	require.Len(t, src.queries, 1)
}

func TestRunPassSourceFailureKeepsEarlierCategories(t *testing.T) {
	src := &fakeSource{
		byURI:   map[string][]articles.Article{"news/Sports": {{URI: "art-1", Body: "body"}}},
		failURI: "news/Business",
	}
	store := newMemStore()

	stats, err := NewPipeline(forest(), src, &fakeQuiz{}, store).RunPass(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Business")
	assert.Equal(t, 1, stats.Created)
	assert.Contains(t, store.byURI, "art-1")
}

func TestRunPassPublishesCreatedEvents(t *testing.T) {
	src := &fakeSource{byURI: map[string][]articles.Article{
		"news/Business": {{URI: "art-9", Body: "Markets rallied."}},
	}}
	bus := &recordingBus{}

	_, err := NewPipeline(forest(), src, &fakeQuiz{}, newMemStore(), WithPublisher(bus, "news-quiz.qa")).
		RunPass(context.Background())
	require.NoError(t, err)

	require.Len(t, bus.events, 1)
	assert.Equal(t, "news-quiz.qa", bus.topics[0])
	evt, err := eventbus.DecodeJSON[events.QaCreatedEvent](bus.events[0])
	require.NoError(t, err)
	assert.Equal(t, events.QaCreated, evt.Type)
	assert.Equal(t, "art-9", evt.URI)
	assert.EqualValues(t, 3, evt.CategoryID)
	assert.NotEmpty(t, evt.QaID)
}

func TestRunPassRespectsLock(t *testing.T) {
	src := &fakeSource{}
	_, err := NewPipeline(forest(), src, &fakeQuiz{}, newMemStore(), WithLock(busyLock{})).
		RunPass(context.Background())
	assert.True(t, IsLocked(err))
	assert.Empty(t, src.queries)
}
