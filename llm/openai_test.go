package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-quiz/llm"
)

func TestOpenAICompleterSendsSystemAndUserMessages(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4-0613","choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer srv.Close()

	c := llm.NewOpenAICompleter(llm.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL}, srv.Client())
	resp, err := c.Complete(context.Background(), llm.Request{Model: "gpt-4", System: "sys", User: "usr"})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)

	assert.Equal(t, `{"summary":"ok"}`, resp.Text)
	assert.Equal(t, "gpt-4-0613", resp.Model)
	assert.Equal(t, int64(5), resp.Usage.TotalTokens)
}

func TestOpenAICompleterReturnsErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := llm.NewOpenAICompleter(llm.OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	_, err := c.Complete(context.Background(), llm.Request{Model: "gpt-4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAICompleterReturnsErrorWithoutChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := llm.NewOpenAICompleter(llm.OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	_, err := c.Complete(context.Background(), llm.Request{Model: "gpt-4"})
	assert.Error(t, err)
}
