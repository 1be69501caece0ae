package articles

import (
	"context"
	"time"
)

// Article is a news article returned by a source. Only URI and Body are
// required by the ingestion pipeline.
type Article struct {
	URI         string
	URL         string
	Title       string
	Body        string
	PublishedAt time.Time
}

// Query scopes one fetch to a category and a recency window.
type Query struct {
	CategoryURI string
	Window      time.Duration
	MaxItems    int
}

// Source fetches recent articles for a category. Results keep the order the
// upstream returned them in.
type Source interface {
	Query(ctx context.Context, q Query) ([]Article, error)
}
