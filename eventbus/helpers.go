package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"news-quiz/events"
)

// NewDomainEvent 는 events 패키지의 이벤트를 Event 로 감싼다. Event.ID 는 도메인
// 이벤트의 id 를 그대로 쓰고, 재시도 한도는 소비하는 토픽이 정한다.
func NewDomainEvent(id string, evt any) (Event, error) {
	data, _, err := events.SerializeEvent(evt)
	if err != nil {
		return Event{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	return Event{ID: id, Payload: data}, nil
}

// PublishDomainEvent 는 NewDomainEvent 후 topic 에 발행한다.
func PublishDomainEvent(ctx context.Context, p Publisher, topic, id string, evt any) error {
	msg, err := NewDomainEvent(id, evt)
	if err != nil {
		return err
	}
	return p.Publish(ctx, topic, msg)
}

// DecodeJSON 은 Event.Payload 를 T 로 언마샬한다.
func DecodeJSON[T any](evt Event) (T, error) {
	var out T
	if err := json.Unmarshal(evt.Payload, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("payload unmarshal 실패: %w", err)
	}
	return out, nil
}

// SubscribeJSON 은 payload 를 T 로 디코딩해 handler 에 넘긴다. 디코딩 실패도
// 핸들러 실패와 같이 재시도 토픽으로 간다.
func SubscribeJSON[T any](ctx context.Context, bus EventBus, groupID string, topic Topic, handler func(ctx context.Context, payload T, meta Event) error) error {
	return bus.Subscribe(ctx, groupID, topic, func(ctx context.Context, evt Event) error {
		v, err := DecodeJSON[T](evt)
		if err != nil {
			return err
		}
		return handler(ctx, v, evt)
	})
}
