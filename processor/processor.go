package processor

import (
	"context"
	"fmt"
	"strings"

	"news-quiz/llm"
	"news-quiz/logger"
	"news-quiz/taxonomy"
)

// Service is the prompted text processor. It holds its own instructions,
// model name and parse mode; the completer carries the credentials.
type Service struct {
	completer    llm.Completer
	model        string
	instructions string
	parser       Parser
}

type Option func(*Service)

// WithStrictParse validates every reply against its task's shape.
func WithStrictParse(strict bool) Option {
	return func(s *Service) {
		if strict {
			s.parser.Mode = ModeStrict
		} else {
			s.parser.Mode = ModeLenient
		}
	}
}

func NewService(completer llm.Completer, forest *taxonomy.Forest, model string, opts ...Option) *Service {
	s := &Service{
		completer:    completer,
		model:        model,
		instructions: BuildInstructions(forest),
		parser:       Parser{Mode: ModeLenient, Forest: forest},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Instructions returns the system instruction sent with every call.
func (s *Service) Instructions() string { return s.instructions }

// Process runs one task over text. Validation failures return an error
// without calling the model. A model reply that cannot be used is returned
// as an Error result, not as an error.
func (s *Service) Process(ctx context.Context, text string, task Task) (*Result, error) {
	if !task.Valid() {
		return nil, fmt.Errorf("%w: %s. Must be one of: CATEGORIZE, QUIZ, SUMMARIZE", ErrInvalidTask, task)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	resp, err := s.completer.Complete(ctx, llm.Request{
		Model:      s.model,
		System:     s.instructions,
		User:       UserMessage(task, text),
		JSONOutput: true,
	})
	if err != nil {
		return nil, &UpstreamError{Task: task, Err: err}
	}

	logger.Log.Infof("AI %s completed - model:%s latency:%dms input:%d output:%d total:%d",
		task.Noun(),
		resp.Model,
		resp.LatencyMs,
		resp.Usage.InputTokens,
		resp.Usage.OutputTokens,
		resp.Usage.TotalTokens,
	)

	res := s.parser.Parse(resp.Text, task)
	if res.IsError() {
		logger.Log.Warnf("AI %s result rejected: %s", task.Noun(), res.Error.Message)
	}
	return res, nil
}

func (s *Service) Categorize(ctx context.Context, text string) (*Result, error) {
	return s.Process(ctx, text, TaskCategorize)
}

func (s *Service) GenerateQuiz(ctx context.Context, text string) (*Result, error) {
	return s.Process(ctx, text, TaskQuiz)
}

func (s *Service) Summarize(ctx context.Context, text string) (*Result, error) {
	return s.Process(ctx, text, TaskSummarize)
}

// AllResults is the combined output of every task, keyed like the /process
// endpoint.
type AllResults struct {
	Categorization *Result `json:"categorization"`
	Quiz           *Result `json:"quiz"`
	Summary        *Result `json:"summary"`
}

// ProcessAll runs the three tasks one after another. The first upstream
// failure aborts the rest.
func (s *Service) ProcessAll(ctx context.Context, text string) (*AllResults, error) {
	var out AllResults
	var err error
	if out.Categorization, err = s.Categorize(ctx, text); err != nil {
		return nil, err
	}
	if out.Quiz, err = s.GenerateQuiz(ctx, text); err != nil {
		return nil, err
	}
	if out.Summary, err = s.Summarize(ctx, text); err != nil {
		return nil, err
	}
	return &out, nil
}
