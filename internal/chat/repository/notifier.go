package repository

import (
	"context"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/pkg/logger"
)

// Notifier room scoped fan-out of the two terminal events. Fire and forget:
// 失敗只記 log，不回滾已落地的狀態轉換
type Notifier interface {
	Emit(roomID string, event domain.EventName, payload domain.EventPayload)
}

type roomNotifier struct {
	pubsub PubSub
	stream EventStream
}

// NewRoomNotifier create notifier backed by redis pub/sub and kafka stream
func NewRoomNotifier(pubsub PubSub, stream EventStream) Notifier {
	return &roomNotifier{
		pubsub: pubsub,
		stream: stream,
	}
}

// Emit publish to the room channel and append to the durable stream
func (n *roomNotifier) Emit(roomID string, event domain.EventName, payload domain.EventPayload) {
	resp := domain.WSResponse{
		Action:  string(event),
		Success: true,
		Payload: map[string]interface{}{
			"message_id":   payload.MessageID,
			"sender_id":    payload.SenderID,
			"chat_room_id": payload.ChatRoomID,
			"day":          payload.Day,
		},
	}
	if err := n.pubsub.Publish(RoomChannel(roomID), resp); err != nil {
		logger.Log.Errorf("emit "+string(event)+" publish err :", err)
	}

	if n.stream != nil {
		if err := n.stream.Append(context.Background(), event, payload); err != nil {
			logger.Log.Errorf("emit "+string(event)+" stream err :", err)
		}
	}
}
