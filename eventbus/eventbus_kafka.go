package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"news-quiz/logger"
	"news-quiz/trace"
)

// KafkaEventBus는 confluent-kafka-go 라이브러리를 사용한 EventBus 구현체입니다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
	// 0 이면 librdkafka 기본값(5분)
	maxPollInterval time.Duration
}

type KafkaOption func(*KafkaEventBus)

// WithMaxPollInterval 은 컨슈머의 max.poll.interval.ms 를 정한다. 핸들러 한 번이
// 이 시간을 넘기면 컨슈머가 그룹에서 빠지고 커밋이 실패한다.
func WithMaxPollInterval(d time.Duration) KafkaOption {
	return func(k *KafkaEventBus) { k.maxPollInterval = d }
}

// NewKafkaEventBus는 Kafka Producer를 초기화합니다.
func NewKafkaEventBus(brokers string, opts ...KafkaOption) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka Producer 생성 실패: %w", err)
	}

	// 전달 보고서 중 Publish 가 기다리지 않는 것들
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Log.Errorf("메시지 전달 실패 %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				logger.Log.Errorf("Kafka 오류: %v", ev)
			}
		}
	}()

	k := &KafkaEventBus{Producer: p, Brokers: brokers}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Close는 남은 메시지를 플러시하고 Producer를 종료합니다.
func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		logger.Log.Warnf("플러시 후에도 %d개의 메시지가 남아 있습니다.", remaining)
	}
	k.Producer.Close()
	logger.Log.Info("Kafka Producer 종료.")
}

// Publish는 지정된 토픽에 이벤트를 발행하고 전달 보고를 기다립니다.
// ctx 에 request id 가 있으면 X-Request-Id 헤더로 함께 보낸다.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}
	if rid := trace.RequestIDFromContext(ctx); rid != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: trace.HeaderRequestID, Value: []byte(rid)})
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err := k.Producer.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("메시지 발행 실패: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("메시지 전달 실패: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (k *KafkaEventBus) consumerConfig(groupID string) *kafka.ConfigMap {
	cm := &kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false, // 재시도 로직을 위해 수동 커밋
		"partition.assignment.strategy": "range",
	}
	if k.maxPollInterval > 0 {
		_ = cm.SetKey("max.poll.interval.ms", int(k.maxPollInterval.Milliseconds()))
	}
	return cm
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	return kafka.NewConsumer(k.consumerConfig(groupID))
}

// contextFromMessage 는 메시지 헤더의 request id 를 이어받는다. 없으면 새로 만든다.
func contextFromMessage(ctx context.Context, msg *kafka.Message) context.Context {
	for _, h := range msg.Headers {
		if h.Key == trace.HeaderRequestID && len(h.Value) > 0 {
			return trace.WithRequestID(ctx, string(h.Value))
		}
	}
	return trace.WithRequestID(ctx, trace.GenerateID())
}

func commit(c *kafka.Consumer, msg *kafka.Message) {
	if _, err := c.CommitMessage(msg); err != nil {
		logger.Log.Errorf("오프셋 커밋 오류: %v", err)
	}
}

// Subscribe는 기본 토픽을 구독하고 핸들러를 실행합니다. 핸들러가 실패하면
// 이벤트를 다음 지연 토픽으로, 재시도를 모두 쓰면 DLQ 로 보냅니다.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka Consumer 생성 실패: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.Base()}, nil); err != nil {
		return fmt.Errorf("토픽 구독 실패 %s: %w", topic.Base(), err)
	}
	logger.Log.Infof("컨슈머 (%s) 시작됨. 구독 토픽: %s", groupID, topic.Base())

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("컨슈머 종료 중.")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.IsFatal() {
				return fmt.Errorf("컨슈머 치명적 오류: %w", err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Log.Errorf("토픽 %s의 이벤트 페이로드 오류: %v. 메시지를 건너뛰고 커밋합니다.", *msg.TopicPartition.Topic, err)
			commit(c, msg)
			continue
		}
		if evt.MaxRetry <= 0 || evt.MaxRetry > topic.MaxRetry() {
			evt.MaxRetry = topic.MaxRetry()
		}

		msgCtx := contextFromMessage(ctx, msg)
		logger.InfoWithFields("event received", logger.FromContext(msgCtx, logger.Fields{
			"event_id": evt.ID,
			"topic":    *msg.TopicPartition.Topic,
			"retry":    evt.Retry,
		}))

		if herr := handler(msgCtx, evt); herr != nil {
			if !k.scheduleRetry(msgCtx, topic, evt, herr) {
				// 재발행 실패: 커밋하지 않고 같은 메시지를 다시 받는다.
				if err := seekBack(c, msg); err != nil {
					logger.Log.Errorf("메시지 seek 실패: %v", err)
				}
				continue
			}
		}
		commit(c, msg)
	}
}

// scheduleRetry 는 실패한 이벤트를 다음 재시도 토픽이나 DLQ 에 발행한다.
// 발행에 성공하면 true 를 반환한다.
func (k *KafkaEventBus) scheduleRetry(ctx context.Context, topic Topic, evt Event, cause error) bool {
	evt.LastError = cause.Error()
	next := evt.Retry + 1

	target, err := topic.RetryTopic(next)
	if next > evt.MaxRetry || err == ErrMaxRetryExceeded {
		target = topic.DLQ()
		logger.Log.Errorf("이벤트 %s 최대 재시도 초과. DLQ %s 로 전송. 최종 오류: %v", evt.ID, target, cause)
	} else {
		evt.Retry = next
		logger.Log.Warnf("이벤트 %s 처리 실패. 재시도 %d/%d 를 토픽 %s 에 예약.", evt.ID, evt.Retry, evt.MaxRetry, target)
	}

	if err := k.Publish(ctx, target, evt); err != nil {
		logger.Log.Errorf("토픽 %s 발행 실패: %v. 오프셋 커밋 안함.", target, err)
		return false
	}
	return true
}

// StartRetryReinjector는 모든 재시도 토픽을 구독하고 지연 시간이 지난 메시지를
// 기본 토픽으로 재발행합니다.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka 재시도 재주입기 생성 실패: %w", err)
	}
	defer c.Close()

	retryTopics := topic.RetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("재시도 토픽 구독 실패 %v: %w", retryTopics, err)
	}
	logger.Log.Infof("재시도 재주입 컨슈머 (%s) 시작됨. 구독 토픽: %s", groupID, strings.Join(retryTopics, ", "))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("재시도 재주입 컨슈머 종료 중.")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("재시도 재주입 컨슈머 치명적 오류: %w", err)
				}
			}
			logger.Log.Errorf("재시도 재주입 컨슈머 ReadMessage 오류: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		topicName := *msg.TopicPartition.Topic
		delay, ok := ParseRetryFromTopicName(topicName)
		if !ok {
			logger.Log.Errorf("재시도 토픽 이름 파싱 실패: %s. 메시지를 건너뛰고 커밋합니다.", topicName)
			commit(c, msg)
			continue
		}

		if wait := time.Until(msg.Timestamp.Add(delay)); wait > 0 {
			// 컨슈머 전체를 오래 막지 않도록 짧게만 대기하고, 커밋 없이 다시 받는다.
			time.Sleep(clampDuration(wait, 50*time.Millisecond, 500*time.Millisecond))
			if err := seekBack(c, msg); err != nil {
				logger.Log.Errorf("재시도 메시지 seek 실패: %v", err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Log.Errorf("재시도 토픽 %s의 이벤트 페이로드 오류: %v. 메시지를 건너뛰고 커밋합니다.", topicName, err)
			commit(c, msg)
			continue
		}

		logger.Log.Infof("이벤트 %s를 %s에서 %s로 재주입. (재시도: %d)", evt.ID, topicName, topic.Base(), evt.Retry)
		if err := k.Publish(contextFromMessage(ctx, msg), topic.Base(), evt); err != nil {
			logger.Log.Errorf("이벤트 %s 재주입 실패: %v. 오프셋 커밋 안함.", evt.ID, err)
			if err := seekBack(c, msg); err != nil {
				logger.Log.Errorf("재시도 메시지 seek 실패: %v", err)
			}
			continue
		}
		commit(c, msg)
	}
}

// seekBack 은 아직 준비되지 않은 메시지를 다시 읽도록 오프셋을 되돌린다.
func seekBack(c *kafka.Consumer, msg *kafka.Message) error {
	return c.Seek(msg.TopicPartition, 0)
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
