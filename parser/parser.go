package parser

import (
	"errors"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ErrEmptyContent is returned when no extractor produced any text.
var ErrEmptyContent = errors.New("no article text found")

type ParsedArticle struct {
	PlainTextContent string
	TopImage         string
}

// ParseHTML extracts the article text from an HTML fragment or page.
// readability 를 먼저 시도하고, 본문이 비면 trafilatura 로 한 번 더 시도한다.
func ParseHTML(htmlStr string) (*ParsedArticle, error) {
	if strings.TrimSpace(htmlStr) == "" {
		return nil, ErrEmptyContent
	}
	if article, err := ParseHtmlWithReadability(htmlStr); err == nil && strings.TrimSpace(article.PlainTextContent) != "" {
		return article, nil
	}
	if article, err := ParseHtmlWithTrafilatura(htmlStr); err == nil && strings.TrimSpace(article.PlainTextContent) != "" {
		return article, nil
	}
	// 피드 description 처럼 짧은 조각은 추출기가 본문으로 인정하지 않으므로
	// 태그만 걷어낸 텍스트를 사용한다.
	if text := StripTags(htmlStr); text != "" {
		return &ParsedArticle{PlainTextContent: text}, nil
	}
	return nil, ErrEmptyContent
}

func ParseHtmlWithReadability(htmlStr string) (*ParsedArticle, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return nil, err
	}
	return &ParsedArticle{
		PlainTextContent: strings.TrimSpace(article.TextContent),
		TopImage:         article.Image,
	}, nil
}

func ParseHtmlWithTrafilatura(htmlStr string) (*ParsedArticle, error) {
	opts := trafilatura.Options{
		IncludeImages: true,
	}

	article, err := trafilatura.Extract(strings.NewReader(htmlStr), opts)
	if err != nil {
		return nil, err
	}

	return &ParsedArticle{
		PlainTextContent: strings.TrimSpace(article.ContentText),
		TopImage:         article.Metadata.Image,
	}, nil
}

// StripTags returns the text nodes of an HTML fragment joined by single spaces.
func StripTags(htmlStr string) string {
	node, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(parts, " ")
}
