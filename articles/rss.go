package articles

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"news-quiz/logger"
	"news-quiz/parser"
)

// rssUserAgent 는 RSS 피드를 요청할 때 사용할 브라우저 유사 User-Agent 이다.
// 일부 사이트(CDN/보안 프록시 뒤)는 기본 Go HTTP 클라이언트 UA를 차단한다.
const rssUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// minFeedBodyRunes 보다 짧은 본문은 요약만 실린 피드로 보고 원문 페이지를 렌더링한다.
const minFeedBodyRunes = 400

// PageRenderer returns the full HTML of an article page.
type PageRenderer interface {
	RenderHTML(ctx context.Context, url string) (string, error)
}

// RSSSource treats a category URI as a feed URL.
type RSSSource struct {
	httpClient *http.Client
	renderer   PageRenderer
	now        func() time.Time
}

func NewRSSSource(httpClient *http.Client) *RSSSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RSSSource{httpClient: httpClient, now: time.Now}
}

// WithRenderer enables full-page rendering for items whose feed body is a
// summary only.
func (s *RSSSource) WithRenderer(r PageRenderer) *RSSSource {
	s.renderer = r
	return s
}

func (s *RSSSource) Query(ctx context.Context, q Query) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.CategoryURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RSS request: %w", err)
	}
	req.Header.Set("User-Agent", rssUserAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodySample, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("failed to fetch RSS feed: status code %d, url: %s, body: %s", resp.StatusCode, q.CategoryURI, string(bodySample))
	}

	cleaned, err := cleanControlCharacters(resp.Body)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	var cutoff time.Time
	if q.Window > 0 {
		cutoff = s.now().Add(-q.Window)
	}

	var items []Article
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}
		if !cutoff.IsZero() && !published.IsZero() && published.Before(cutoff) {
			continue
		}

		uri := item.GUID
		if uri == "" {
			uri = item.Link
		}
		if uri == "" {
			continue
		}

		raw := item.Content
		if raw == "" {
			raw = item.Description
		}
		var body string
		if parsed, err := parser.ParseHTML(raw); err == nil {
			body = parsed.PlainTextContent
		}
		if s.renderer != nil && item.Link != "" && utf8.RuneCountInString(body) < minFeedBodyRunes {
			body = s.renderBody(ctx, item.Link, body)
		}

		items = append(items, Article{
			URI:         uri,
			URL:         item.Link,
			Title:       item.Title,
			Body:        body,
			PublishedAt: published,
		})
		if q.MaxItems > 0 && len(items) >= q.MaxItems {
			break
		}
	}
	return items, nil
}

// renderBody 는 렌더링에 실패하면 피드 본문을 그대로 돌려준다.
func (s *RSSSource) renderBody(ctx context.Context, url, fallback string) string {
	page, err := s.renderer.RenderHTML(ctx, url)
	if err != nil {
		logger.Log.Warnf("render %s failed: %v", url, err)
		return fallback
	}
	parsed, err := parser.ParseHTML(page)
	if err != nil || utf8.RuneCountInString(parsed.PlainTextContent) <= utf8.RuneCountInString(fallback) {
		return fallback
	}
	return parsed.PlainTextContent
}

// XML에서 허용되지 않는 제어 문자 범위 (탭, LF, CR 제외).
var invalidControlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

func cleanControlCharacters(r io.Reader) (io.Reader, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body for cleaning: %w", err)
	}
	return bytes.NewReader(invalidControlCharRegex.ReplaceAll(bodyBytes, nil)), nil
}
