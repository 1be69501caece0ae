package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	QaCreated          EventType = "qa.created"
	IngestionRequested EventType = "ingestion.requested"
)

const currentEventVersion = "1.0"

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "ingest", "api"
	Version   string    `json:"version"`
}

// NewBaseEvent 는 새 id 와 현재 시각으로 BaseEvent 를 만든다.
func NewBaseEvent(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   currentEventVersion,
	}
}

// QaCreatedEvent 수집 패스가 새 문항을 저장했을 때 발행된다.
type QaCreatedEvent struct {
	BaseEvent
	QaID       string `json:"qa_id"`
	CategoryID int64  `json:"category_id"`
	URI        string `json:"uri"`
}

// IngestionRequestedEvent 수집 패스 1회 실행 요청
type IngestionRequestedEvent struct {
	BaseEvent
	RequestedBy string `json:"requested_by"`
}

// SerializeEvent 이벤트를 JSON으로 직렬화하고 타입 정보 반환
func SerializeEvent(event any) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case QaCreatedEvent:
		eventType = e.Type
	case *QaCreatedEvent:
		eventType = e.Type
	case IngestionRequestedEvent:
		eventType = e.Type
	case *IngestionRequestedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, eventType, nil
}

// DeserializeEvent 이벤트 타입에 따라 적절한 구조체로 역직렬화
func DeserializeEvent(eventType EventType, data []byte) (any, error) {
	var event any

	switch eventType {
	case QaCreated:
		event = &QaCreatedEvent{}
	case IngestionRequested:
		event = &IngestionRequestedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
