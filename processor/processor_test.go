package processor_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-quiz/config"
	"news-quiz/llm"
	"news-quiz/processor"
	"news-quiz/taxonomy"
)

const quizReply = `{"question": "Who won?", "choices": {"A":"Team X","B":"Team Y","C":"Team Z","D":"Team W"}, "correct_answer": "A", "explanation": "Team X won."}`

type stubCompleter struct {
	calls int
	last  llm.Request
	reply string
	err   error
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.reply, Model: req.Model}, nil
}

func testForest() *taxonomy.Forest {
	return taxonomy.MustLoad([]config.CategoryDef{
		{ID: 1, Name: "Sports", URI: "news/Sports", Subcategories: []config.SubcategoryDef{{ID: 2, Name: "Football"}, {ID: 3, Name: "Tennis"}}},
		{ID: 4, Name: "Science", URI: "news/Science", Subcategories: []config.SubcategoryDef{{ID: 5, Name: "Space"}}},
	})
}

func TestProcessRejectsInvalidTaskWithoutCall(t *testing.T) {
	stub := &stubCompleter{reply: quizReply}
	svc := processor.NewService(stub, testForest(), "gpt-4")

	res, err := svc.Process(context.Background(), "some news", processor.Task("TRANSLATE"))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, processor.ErrInvalidTask)
	assert.Equal(t, 0, stub.calls)
}

func TestProcessRejectsEmptyTextWithoutCall(t *testing.T) {
	stub := &stubCompleter{reply: quizReply}
	svc := processor.NewService(stub, testForest(), "gpt-4")

	_, err := svc.Process(context.Background(), "   ", processor.TaskQuiz)
	assert.ErrorIs(t, err, processor.ErrEmptyText)
	assert.Equal(t, 0, stub.calls)
}

func TestProcessMakesExactlyOneCall(t *testing.T) {
	stub := &stubCompleter{reply: quizReply}
	svc := processor.NewService(stub, testForest(), "gpt-4")

	res, err := svc.Process(context.Background(), "Team X won the championship.", processor.TaskQuiz)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)

	assert.Equal(t, "gpt-4", stub.last.Model)
	assert.Equal(t, "TASK: QUIZ\n\nNEWS TEXT:\nTeam X won the championship.", stub.last.User)
	assert.Contains(t, stub.last.System, "- Sports:\n  * Football\n  * Tennis\n")

	require.Equal(t, processor.KindQuiz, res.Kind)
	assert.Equal(t, "Who won?", res.Quiz.Question)
	assert.Equal(t, "Team X", res.Quiz.Choices["A"])
	assert.Equal(t, "A", res.Quiz.CorrectAnswer)
	assert.NoError(t, res.Quiz.Validate())
}

func TestProcessPropagatesUpstreamFailure(t *testing.T) {
	boom := errors.New("connection reset")
	stub := &stubCompleter{err: boom}
	svc := processor.NewService(stub, testForest(), "gpt-4")

	res, err := svc.Process(context.Background(), "text", processor.TaskSummarize)
	assert.Nil(t, res)
	var upstream *processor.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, processor.TaskSummarize, upstream.Task)
	assert.ErrorIs(t, err, boom)
}

func TestProcessReturnsErrorResultForMalformedReply(t *testing.T) {
	for _, task := range processor.Tasks {
		stub := &stubCompleter{reply: "Sure! Here is your answer."}
		svc := processor.NewService(stub, testForest(), "gpt-4")

		res, err := svc.Process(context.Background(), "text", task)
		require.NoError(t, err)
		require.True(t, res.IsError(), task)
		require.NotNil(t, res.Error.RawOutput)
		assert.Equal(t, "Sure! Here is your answer.", *res.Error.RawOutput)
		assert.Contains(t, res.Error.Message, strings.ToLower(string(task)))
	}
}

func TestProcessAllRunsEveryTask(t *testing.T) {
	stub := &stubCompleter{reply: `{"summary":"s","key_points":["a"],"entities":["b"]}`}
	svc := processor.NewService(stub, testForest(), "gpt-4")

	out, err := svc.ProcessAll(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls)
	assert.Equal(t, processor.KindCategorization, out.Categorization.Kind)
	assert.Equal(t, processor.KindQuiz, out.Quiz.Kind)
	assert.Equal(t, processor.KindSummary, out.Summary.Kind)
}

func TestStrictServiceRejectsUnknownCategory(t *testing.T) {
	stub := &stubCompleter{reply: `{"main_category":"Weather","subcategory":"Rain","explanation":"x"}`}
	svc := processor.NewService(stub, testForest(), "gpt-4", processor.WithStrictParse(true))

	res, err := svc.Categorize(context.Background(), "It rained.")
	require.NoError(t, err)
	require.True(t, res.IsError())
	assert.Contains(t, res.Error.Message, "Invalid categorize result")
}

func TestParseTask(t *testing.T) {
	task, err := processor.ParseTask("quiz")
	require.NoError(t, err)
	assert.Equal(t, processor.TaskQuiz, task)

	_, err = processor.ParseTask("translate")
	assert.ErrorIs(t, err, processor.ErrInvalidTask)
}

func TestResultMarshalJSONUsesVariantShape(t *testing.T) {
	raw := "not json"
	b, err := json.Marshal(processor.NewErrorResult("Failed to parse quiz result", &raw))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Failed to parse quiz result","raw_output":"not json"}`, string(b))

	b, err = json.Marshal(processor.NewErrorResult("Invalid task: X", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Invalid task: X"}`, string(b))
}

func TestBuildInstructionsEmbedsTaxonomy(t *testing.T) {
	out := processor.BuildInstructions(testForest())

	assert.True(t, strings.HasPrefix(out, "You are a comprehensive news processing assistant"))
	// 카테고리 목록 뒤에는 빈 줄 하나가 온다.
	assert.Contains(t, out, "subcategories:\n- Sports:\n  * Football\n  * Tennis\n- Science:\n  * Space\n\n2. QUIZ:")
	assert.True(t, strings.HasSuffix(out, "Only return the JSON object, with no additional text before or after.\n"))
	assert.NotContains(t, out, "markdown")

	assert.Equal(t, "TASK: QUIZ\n\nNEWS TEXT:\nbody", processor.UserMessage(processor.TaskQuiz, "body"))
}
