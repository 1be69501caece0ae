package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"news-quiz/articles"
	"news-quiz/eventbus"
	"news-quiz/events"
	"news-quiz/logger"
	"news-quiz/models"
	"news-quiz/passlock"
	"news-quiz/processor"
	"news-quiz/taxonomy"
	"news-quiz/trace"
)

const (
	DefaultWindow   = 31 * 24 * time.Hour
	DefaultMaxItems = 10
)

// QuizGenerator turns article text into a quiz result. Both the remote
// quizclient.Client and an in-process processor.Service satisfy it.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, text string) (*processor.Result, error)
}

// QaStore is the persistence the pass needs.
type QaStore interface {
	ExistsByURI(ctx context.Context, uri string) (bool, error)
	// InsertIfAbsent returns false when a question for q.URI already exists.
	InsertIfAbsent(ctx context.Context, q *models.NewsQA) (bool, error)
}

// Stats summarizes one pass.
type Stats struct {
	Categories int `json:"categories"`
	Fetched    int `json:"fetched"`
	Created    int `json:"created"`
	Skipped    int `json:"skipped"`
	Dropped    int `json:"dropped"`
}

type Pipeline struct {
	forest   *taxonomy.Forest
	source   articles.Source
	quiz     QuizGenerator
	store    QaStore
	bus      eventbus.Publisher
	topic    string
	lock     passlock.Locker
	window   time.Duration
	maxItems int
	// true 면 GenerateQuiz 호출 오류가 패스를 중단한다
	abortOnQuizErr bool
}

type Option func(*Pipeline)

// WithPublisher publishes qa.created on topic for every stored question.
func WithPublisher(bus eventbus.Publisher, topic string) Option {
	return func(p *Pipeline) {
		p.bus = bus
		p.topic = topic
	}
}

func WithLock(l passlock.Locker) Option {
	return func(p *Pipeline) { p.lock = l }
}

// WithAbortOnQuizFailure makes a failed GenerateQuiz call abort the pass
// instead of dropping the article. Malformed replies are still dropped.
func WithAbortOnQuizFailure(abort bool) Option {
	return func(p *Pipeline) { p.abortOnQuizErr = abort }
}

func WithWindow(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.window = d
		}
	}
}

func WithMaxItems(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxItems = n
		}
	}
}

func NewPipeline(forest *taxonomy.Forest, source articles.Source, quiz QuizGenerator, store QaStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		forest:   forest,
		source:   source,
		quiz:     quiz,
		store:    store,
		bus:      eventbus.NoopBus{},
		lock:     passlock.Noop{},
		window:   DefaultWindow,
		maxItems: DefaultMaxItems,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunPass fetches recent articles for every root category in stored order and
// stores one quiz question per article not seen before.
//
// A source failure aborts the pass and is returned; questions stored for
// earlier categories stay. Malformed quiz generations only drop that
// article. A failed quiz call drops the article too, unless
// WithAbortOnQuizFailure is set.
func (p *Pipeline) RunPass(ctx context.Context) (Stats, error) {
	var stats Stats

	release, err := p.lock.Acquire(ctx)
	if err != nil {
		return stats, err
	}
	defer func() {
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			logger.Log.Warnf("ingestion lock release failed: %v", rerr)
		}
	}()

	if trace.RequestIDFromContext(ctx) == "" {
		ctx = trace.WithRequestID(ctx, trace.GenerateID())
	}
	started := time.Now()

	for _, root := range p.forest.Roots() {
		arts, err := p.source.Query(ctx, articles.Query{
			CategoryURI: root.SourceURI,
			Window:      p.window,
			MaxItems:    p.maxItems,
		})
		if err != nil {
			return stats, fmt.Errorf("fetch articles for %q: %w", root.Name, err)
		}
		stats.Categories++
		stats.Fetched += len(arts)

		for _, art := range arts {
			if err := p.ingestArticle(ctx, root, art, &stats); err != nil {
				return stats, err
			}
		}
	}

	logger.InfoWithFields("ingestion pass finished", logger.FromContext(ctx, logger.Fields{
		"categories":  stats.Categories,
		"fetched":     stats.Fetched,
		"created":     stats.Created,
		"skipped":     stats.Skipped,
		"dropped":     stats.Dropped,
		"duration_ms": time.Since(started).Milliseconds(),
	}))
	return stats, nil
}

// ingestArticle returns an error for store failures, and for quiz call
// failures when the pipeline aborts on them.
func (p *Pipeline) ingestArticle(ctx context.Context, root taxonomy.Node, art articles.Article, stats *Stats) error {
	if art.URI == "" || art.Body == "" {
		stats.Dropped++
		logger.Log.Warnf("article without uri or body dropped (category=%s)", root.Name)
		return nil
	}

	exists, err := p.store.ExistsByURI(ctx, art.URI)
	if err != nil {
		return fmt.Errorf("check article %s: %w", art.URI, err)
	}
	if exists {
		stats.Skipped++
		return nil
	}

	res, err := p.quiz.GenerateQuiz(ctx, art.Body)
	if err != nil {
		if p.abortOnQuizErr {
			return fmt.Errorf("generate quiz for %s: %w", art.URI, err)
		}
		stats.Dropped++
		logger.WarnWithFields("quiz generation failed", logger.FromContext(ctx, logger.Fields{"uri": art.URI, "error": err.Error()}))
		return nil
	}
	if res.IsError() {
		stats.Dropped++
		fields := logger.FromContext(ctx, logger.Fields{"uri": art.URI})
		if res != nil && res.Error != nil {
			fields["error"] = res.Error.Message
		}
		logger.WarnWithFields("malformed quiz dropped", fields)
		return nil
	}
	if err := res.Quiz.Validate(); err != nil {
		stats.Dropped++
		logger.WarnWithFields("invalid quiz dropped", logger.FromContext(ctx, logger.Fields{"uri": art.URI, "error": err.Error()}))
		return nil
	}

	qa := newsQAFromQuiz(root, art, res.Quiz)
	created, err := p.store.InsertIfAbsent(ctx, qa)
	if err != nil {
		return fmt.Errorf("store question for %s: %w", art.URI, err)
	}
	if !created {
		stats.Skipped++
		return nil
	}
	stats.Created++
	p.publishCreated(ctx, qa)
	return nil
}

func newsQAFromQuiz(root taxonomy.Node, art articles.Article, q *processor.Quiz) *models.NewsQA {
	uri := art.URI
	options := make(map[string]string, len(q.Choices))
	for k, v := range q.Choices {
		options[k] = v
	}
	return &models.NewsQA{
		CategoryID:  root.ID,
		Question:    q.Question,
		Answer:      q.CorrectAnswer,
		Description: q.Explanation,
		Options:     options,
		Paragraph:   art.Body,
		URI:         &uri,
	}
}

// publishCreated 실패는 패스를 멈추지 않는다. 문항은 이미 저장되었다.
func (p *Pipeline) publishCreated(ctx context.Context, qa *models.NewsQA) {
	if _, ok := p.bus.(eventbus.NoopBus); ok {
		return
	}
	evt := events.QaCreatedEvent{
		BaseEvent:  events.NewBaseEvent(events.QaCreated, "ingest"),
		QaID:       qa.ID.Hex(),
		CategoryID: qa.CategoryID,
		URI:        *qa.URI,
	}
	if err := eventbus.PublishDomainEvent(ctx, p.bus, p.topic, evt.ID, evt); err != nil {
		logger.ErrorWithFields("publish qa.created failed", logger.FromContext(ctx, logger.Fields{"qa_id": evt.QaID, "error": err.Error()}))
	}
}

// IsLocked reports whether err means another pass holds the lock.
func IsLocked(err error) bool {
	return errors.Is(err, passlock.ErrLocked)
}
