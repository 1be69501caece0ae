package eventbus

import "context"

// NoopBus 는 kafka 가 설정되지 않은 환경에서 발행을 버린다.
type NoopBus struct{}

func (NoopBus) Publish(ctx context.Context, topic string, event Event) error {
	return nil
}

func (NoopBus) Close() {}

func (NoopBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	return ErrNoBroker
}

func (NoopBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	return ErrNoBroker
}
