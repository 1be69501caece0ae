package articles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultEventRegistryBaseURL = "https://eventregistry.org"

// EventRegistryClient queries the Event Registry article search API.
type EventRegistryClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewEventRegistryClient(apiKey, baseURL string, httpClient *http.Client) *EventRegistryClient {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultEventRegistryBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EventRegistryClient{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
}

type erComplexQuery struct {
	Query  map[string]string `json:"$query"`
	Filter map[string]string `json:"$filter"`
}

type erRequest struct {
	Query          erComplexQuery `json:"query"`
	ResultType     string         `json:"resultType"`
	ArticlesPage   int            `json:"articlesPage"`
	ArticlesCount  int            `json:"articlesCount"`
	ArticlesSortBy string         `json:"articlesSortBy"`
	APIKey         string         `json:"apiKey"`
}

type erArticle struct {
	URI      string `json:"uri"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	DateTime string `json:"dateTime"`
}

type erResponse struct {
	Articles struct {
		Results      []erArticle `json:"results"`
		TotalResults int         `json:"totalResults"`
	} `json:"articles"`
	Error string `json:"error,omitempty"`
}

// Query fetches up to q.MaxItems articles for the category within the window.
func (c *EventRegistryClient) Query(ctx context.Context, q Query) ([]Article, error) {
	days := int(q.Window / (24 * time.Hour))
	if days <= 0 {
		days = 31
	}
	count := q.MaxItems
	if count <= 0 {
		count = 10
	}

	body := erRequest{
		Query: erComplexQuery{
			Query:  map[string]string{"categoryUri": q.CategoryURI},
			Filter: map[string]string{"forceMaxDataTimeWindow": strconv.Itoa(days)},
		},
		ResultType:     "articles",
		ArticlesPage:   1,
		ArticlesCount:  count,
		ArticlesSortBy: "rel",
		APIKey:         c.apiKey,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event registry query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/article/getArticles", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create event registry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodySample, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("event registry returned status %d: %s", resp.StatusCode, string(bodySample))
	}

	var out erResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode event registry response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("event registry error: %s", out.Error)
	}

	items := make([]Article, 0, len(out.Articles.Results))
	for _, a := range out.Articles.Results {
		art := Article{URI: a.URI, URL: a.URL, Title: a.Title, Body: a.Body}
		if a.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, a.DateTime); err == nil {
				art.PublishedAt = t
			}
		}
		items = append(items, art)
	}
	if len(items) > count {
		items = items[:count]
	}
	return items, nil
}
