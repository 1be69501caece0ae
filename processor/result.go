package processor

import (
	"encoding/json"
	"fmt"

	"news-quiz/models"
)

// Kind discriminates the Result variants.
type Kind string

const (
	KindCategorization Kind = "categorization"
	KindQuiz           Kind = "quiz"
	KindSummary        Kind = "summary"
	KindError          Kind = "error"
)

type Categorization struct {
	MainCategory string `json:"main_category"`
	Subcategory  string `json:"subcategory"`
	Explanation  string `json:"explanation"`
}

type Quiz struct {
	Question      string            `json:"question"`
	Choices       map[string]string `json:"choices"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Validate reports whether the quiz can be stored as a question: a question,
// exactly the labels A-D with non-empty text, and a correct answer among them.
func (q *Quiz) Validate() error {
	if q == nil {
		return fmt.Errorf("quiz is missing")
	}
	if q.Question == "" {
		return fmt.Errorf("question is empty")
	}
	if len(q.Choices) != len(models.ChoiceLabels) {
		return fmt.Errorf("expected %d choices, got %d", len(models.ChoiceLabels), len(q.Choices))
	}
	for _, label := range models.ChoiceLabels {
		if q.Choices[label] == "" {
			return fmt.Errorf("choice %s is missing", label)
		}
	}
	if _, ok := q.Choices[q.CorrectAnswer]; !ok {
		return fmt.Errorf("correct_answer %q is not one of A, B, C, D", q.CorrectAnswer)
	}
	return nil
}

type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Entities  []string `json:"entities"`
}

// ErrorResult is the expected, non-fatal outcome of an unusable model reply.
type ErrorResult struct {
	Message   string  `json:"error"`
	RawOutput *string `json:"raw_output,omitempty"`
}

// Result is the outcome of one processing call. Exactly one of the variant
// pointers matching Kind is set.
//
// Raw holds the decoded JSON object exactly as the model returned it, so the
// lenient mode can pass unknown keys through untouched.
type Result struct {
	Kind           Kind
	Categorization *Categorization
	Quiz           *Quiz
	Summary        *Summary
	Error          *ErrorResult
	Raw            map[string]any
}

func (r *Result) IsError() bool { return r == nil || r.Kind == KindError }

// NewErrorResult builds an Error variant. raw may be nil.
func NewErrorResult(message string, raw *string) *Result {
	return &Result{Kind: KindError, Error: &ErrorResult{Message: message, RawOutput: raw}}
}

func (r *Result) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindError:
		return json.Marshal(r.Error)
	}
	if r.Raw != nil {
		return json.Marshal(r.Raw)
	}
	switch r.Kind {
	case KindCategorization:
		return json.Marshal(r.Categorization)
	case KindQuiz:
		return json.Marshal(r.Quiz)
	case KindSummary:
		return json.Marshal(r.Summary)
	}
	return nil, fmt.Errorf("unknown result kind %q", r.Kind)
}

func kindOf(task Task) Kind {
	switch task {
	case TaskCategorize:
		return KindCategorization
	case TaskQuiz:
		return KindQuiz
	case TaskSummarize:
		return KindSummary
	}
	return KindError
}
