package repository

import (
	"context"
	"encoding/json"

	"chat_delivery_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// EventStream durable sink for terminal transition events, consumed offline
type EventStream interface {
	Append(ctx context.Context, event domain.EventName, payload domain.EventPayload) error
}

type kafkaEventStream struct {
	writer *kafka.Writer
}

// NewKafkaEventStream create kafka backed event stream
func NewKafkaEventStream(writer *kafka.Writer) EventStream {
	return &kafkaEventStream{writer: writer}
}

type streamRecord struct {
	Event   domain.EventName    `json:"event"`
	Payload domain.EventPayload `json:"payload"`
}

// Append 以 room id 當 key，同房間事件保持分區有序
func (s *kafkaEventStream) Append(ctx context.Context, event domain.EventName, payload domain.EventPayload) error {
	value, err := json.Marshal(streamRecord{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.ChatRoomID),
		Value: value,
	})
}
