package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultRetryDelays 는 kafka.retry_delays 가 비어 있을 때 쓰는 재시도 간격이다.
// n 번째 재시도는 n 번째 간격의 지연 토픽을 거친다.
var DefaultRetryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Topic 은 기본 토픽 이름과 그 토픽의 재시도 간격을 묶는다. 지연 토픽과 DLQ
// 이름은 여기서 파생된다.
type Topic struct {
	base   string
	delays []time.Duration
}

// NewTopic 은 delays 가 없으면 DefaultRetryDelays 를 쓴다.
func NewTopic(base string, delays ...time.Duration) Topic {
	if len(delays) == 0 {
		delays = DefaultRetryDelays
	}
	return Topic{base: base, delays: delays}
}

func (t Topic) Base() string { return t.base }

// DLQ 예: news-quiz.ingestion.dlq
func (t Topic) DLQ() string { return t.base + ".dlq" }

// MaxRetry 는 DLQ 로 가기 전 재시도 횟수다.
func (t Topic) MaxRetry() int { return len(t.delays) }

// RetryTopics 는 지연 토픽 이름을 간격 순서대로 돌려준다 (base.retry.10s ...).
func (t Topic) RetryTopics() []string {
	out := make([]string, len(t.delays))
	for i, d := range t.delays {
		out[i] = retryTopicName(t.base, d)
	}
	return out
}

// RetryTopic 은 n 번째(1-based) 재시도의 지연 토픽이다.
func (t Topic) RetryTopic(n int) (string, error) {
	if n <= 0 || n > len(t.delays) {
		return "", ErrMaxRetryExceeded
	}
	return retryTopicName(t.base, t.delays[n-1]), nil
}

// 재주입기는 이 이름에서 지연 시간을 다시 읽는다 (ParseRetryFromTopicName).
func retryTopicName(base string, d time.Duration) string {
	return fmt.Sprintf("%s.retry.%s", base, d)
}

// Event 는 kafka 메시지 값이다. Retry 는 지금까지의 재시도 횟수이고, MaxRetry 가
// 0 이면 구독한 토픽의 MaxRetry 를 따른다.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

type EventHandler func(ctx context.Context, event Event) error

// Publisher 는 발행만 필요한 쪽(수집 패스, API)이 의존하는 인터페이스다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

type EventBus interface {
	Publisher
	// Subscribe 는 기본 토픽을 소비한다. 핸들러가 실패하면 이벤트는 다음 지연
	// 토픽으로, 재시도를 다 쓰면 DLQ 로 간다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector 는 지연 토픽들을 소비하며 간격이 지난 이벤트를 기본
	// 토픽으로 되돌린다.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
}

var (
	ErrMaxRetryExceeded = errors.New("최대 재시도 횟수 초과")
	// ErrNoBroker 는 브로커 없이 구독을 시도했을 때 반환된다.
	ErrNoBroker = errors.New("kafka 브로커가 설정되지 않음")
)
