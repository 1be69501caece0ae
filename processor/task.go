package processor

import (
	"fmt"
	"strings"
)

// Task selects the processing mode.
type Task string

const (
	TaskCategorize Task = "CATEGORIZE"
	TaskQuiz       Task = "QUIZ"
	TaskSummarize  Task = "SUMMARIZE"
)

// Tasks lists every supported task in prompt order.
var Tasks = []Task{TaskCategorize, TaskQuiz, TaskSummarize}

func (t Task) Valid() bool {
	switch t {
	case TaskCategorize, TaskQuiz, TaskSummarize:
		return true
	}
	return false
}

// Noun is the lower-case name used in result messages ("quiz", "summarize").
func (t Task) Noun() string {
	return strings.ToLower(string(t))
}

// ParseTask accepts a task name in any case.
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %s. Must be one of: CATEGORIZE, QUIZ, SUMMARIZE", ErrInvalidTask, s)
	}
	return t, nil
}
