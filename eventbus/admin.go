package eventbus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// topicSpecs 는 기본 토픽, DLQ, 모든 재시도 토픽의 생성 사양이다.
func topicSpecs(topic Topic, basePartitions int) []kafka.TopicSpecification {
	specs := make([]kafka.TopicSpecification, 0, 2+topic.MaxRetry())
	specs = append(specs,
		kafka.TopicSpecification{Topic: topic.Base(), NumPartitions: basePartitions, ReplicationFactor: 1},
		// DLQ 는 1 파티션
		kafka.TopicSpecification{Topic: topic.DLQ(), NumPartitions: 1, ReplicationFactor: 1},
	)
	for _, retryTopic := range topic.RetryTopics() {
		specs = append(specs, kafka.TopicSpecification{
			Topic:             retryTopic,
			NumPartitions:     basePartitions,
			ReplicationFactor: 1,
		})
	}
	return specs
}

// EnsureTopics는 주어진 토픽들의 기본/지연/DLQ 토픽을 생성합니다.
// 이미 존재하는 토픽은 성공으로 간주합니다.
func EnsureTopics(ctx context.Context, brokers string, topics []Topic, basePartitions int) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return fmt.Errorf("AdminClient 생성 실패: %w", err)
	}
	defer admin.Close()

	var specs []kafka.TopicSpecification
	for _, t := range topics {
		specs = append(specs, topicSpecs(t, basePartitions)...)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, specs)
	if err != nil {
		return fmt.Errorf("토픽 생성 요청 실패: %w", err)
	}
	for _, r := range results {
		code := r.Error.Code()
		if code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("토픽 %s 생성 실패: %v", r.Topic, r.Error)
		}
	}
	return nil
}

// ParseRetryFromTopicName는 토픽 이름의 ".retry." 이후 문자열을 time.Duration으로 파싱합니다.
// 예: "news-quiz.ingestion.retry.1m0s" -> 1m0s
func ParseRetryFromTopicName(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	d, err := time.ParseDuration(name[idx+7:])
	if err != nil {
		return 0, false
	}
	return d, true
}
