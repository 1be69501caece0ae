package processor

import (
	"encoding/json"
	"fmt"
	"strings"

	"news-quiz/taxonomy"
)

// Mode controls how much of the model output is validated.
type Mode int

const (
	// ModeLenient accepts any JSON object and decodes the known fields on a
	// best-effort basis. Unknown keys stay in Result.Raw.
	ModeLenient Mode = iota
	// ModeStrict additionally requires every field of the task's shape.
	ModeStrict
)

// Parser turns raw model text into a Result. Forest is optional and only
// used by ModeStrict to check categorization names.
type Parser struct {
	Mode   Mode
	Forest *taxonomy.Forest
}

// Parse is Parser{Mode: ModeLenient}.Parse.
func Parse(raw string, task Task) *Result {
	return Parser{}.Parse(raw, task)
}

func (p Parser) Parse(raw string, task Task) *Result {
	if !task.Valid() {
		return NewErrorResult(fmt.Sprintf("Invalid task: %s", task), &raw)
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return NewErrorResult(fmt.Sprintf("Failed to parse %s result", task.Noun()), &raw)
	}

	res := &Result{Kind: kindOf(task), Raw: obj}
	// 타입이 어긋난 필드가 있어도 lenient 모드에서는 채워진 필드만 사용한다.
	switch task {
	case TaskCategorize:
		res.Categorization = &Categorization{}
		_ = json.Unmarshal([]byte(raw), res.Categorization)
	case TaskQuiz:
		res.Quiz = &Quiz{}
		_ = json.Unmarshal([]byte(raw), res.Quiz)
	case TaskSummarize:
		res.Summary = &Summary{}
		_ = json.Unmarshal([]byte(raw), res.Summary)
	}

	if p.Mode == ModeStrict {
		if err := p.validate(res, raw); err != nil {
			return NewErrorResult(fmt.Sprintf("Invalid %s result: %v", task.Noun(), err), &raw)
		}
	}
	return res
}

var requiredKeys = map[Task][]string{
	TaskCategorize: {"main_category", "subcategory", "explanation"},
	TaskQuiz:       {"question", "choices", "correct_answer", "explanation"},
	TaskSummarize:  {"summary", "key_points", "entities"},
}

func (p Parser) validate(res *Result, raw string) error {
	var task Task
	switch res.Kind {
	case KindCategorization:
		task = TaskCategorize
	case KindQuiz:
		task = TaskQuiz
	case KindSummary:
		task = TaskSummarize
	}
	var missing []string
	for _, key := range requiredKeys[task] {
		if _, ok := res.Raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing keys: %s", strings.Join(missing, ", "))
	}

	// 키가 모두 있으면 타입까지 맞아야 한다.
	switch task {
	case TaskCategorize:
		var c Categorization
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return err
		}
		if c.MainCategory == "" || c.Subcategory == "" {
			return fmt.Errorf("main_category and subcategory must not be empty")
		}
		if p.Forest != nil {
			if err := p.Forest.ValidateCategorization(c.MainCategory, c.Subcategory); err != nil {
				return err
			}
		}
	case TaskQuiz:
		var q Quiz
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return err
		}
		return q.Validate()
	case TaskSummarize:
		var s Summary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return err
		}
		if s.Summary == "" {
			return fmt.Errorf("summary is empty")
		}
	}
	return nil
}
