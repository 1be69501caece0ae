package quizclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"news-quiz/processor"
)

// Client calls a remote processor service's /quiz endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type textRequest struct {
	Text string `json:"text"`
}

// GenerateQuiz sends text to the processor. Transport failures and non-2xx
// statuses are errors; an {error, raw_output} body is an Error result.
func (c *Client) GenerateQuiz(ctx context.Context, text string) (*processor.Result, error) {
	data, err := json.Marshal(textRequest{Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quiz", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quiz request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quiz response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("quiz endpoint returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var errBody processor.ErrorResult
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Message != "" {
		return &processor.Result{Kind: processor.KindError, Error: &errBody}, nil
	}
	return processor.Parse(string(body), processor.TaskQuiz), nil
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
