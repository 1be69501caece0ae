package eventbus

import (
	"os"

	"news-quiz/config"
)

// Brokers 는 KAFKA_BOOTSTRAP_SERVERS 환경변수를 설정 파일 값보다 우선한다.
// 둘 다 비어 있으면 빈 문자열이다.
func Brokers(cfg config.KafkaConfig) string {
	if v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); v != "" {
		return v
	}
	return cfg.BootstrapServers
}

// New 는 브로커가 설정되어 있으면 KafkaEventBus 를, 아니면 NoopBus 를 반환한다.
func New(cfg config.KafkaConfig) (EventBus, error) {
	brokers := Brokers(cfg)
	if brokers == "" {
		return NoopBus{}, nil
	}
	bus, err := NewKafkaEventBus(brokers, WithMaxPollInterval(cfg.MaxPollInterval))
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// QaTopic 은 qa.created 이벤트 토픽이다.
func QaTopic(cfg config.KafkaConfig) Topic {
	return NewTopic(cfg.Topic, cfg.RetryDelays...)
}

// IngestionTopic 은 수집 요청 토픽이다.
func IngestionTopic(cfg config.KafkaConfig) Topic {
	return NewTopic(cfg.IngestionTopic, cfg.RetryDelays...)
}

func AllTopics(cfg config.KafkaConfig) []Topic {
	return []Topic{QaTopic(cfg), IngestionTopic(cfg)}
}
