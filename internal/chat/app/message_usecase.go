package app

import (
	"context"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/internal/chat/repository"
	errprocess "chat_delivery_service/pkg/err"
	"chat_delivery_service/pkg/logger"

	"github.com/google/uuid"
)

// SendMessageUseCase 負責訊息寫入 day bucket 與初始化追蹤狀態
type SendMessageUseCase struct {
	roomRepo     repository.RoomRepository
	memberPubSub repository.PubSub
	notifier     repository.Notifier
}

// NewSendMessageUseCase init send message use case
func NewSendMessageUseCase(
	roomRepo repository.RoomRepository,
	pub repository.PubSub,
	notifier repository.Notifier,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		roomRepo:     roomRepo,
		memberPubSub: pub,
		notifier:     notifier,
	}
}

// Execute append message to the room history. Returns the stored message, the room
// and the day label, callers use them to register the inbox projections.
func (uc *SendMessageUseCase) Execute(ctx context.Context, roomID, senderID, content string, timeSent int64) (*domain.Message, *domain.ChatRoom, string, error) {
	if roomID == "" || senderID == "" {
		return nil, nil, "", errprocess.Validation("room id and sender id are required")
	}

	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, nil, "", err
	}

	day := domain.DayLabel(timeSent)

	msg := &domain.Message{
		ID:       uuid.New().String(),
		SenderID: senderID,
		Content:  content,
		TimeSent: timeSent,
	}
	msg.InitPendingSets(room.Members)

	if err := uc.roomRepo.AppendMessage(ctx, room, day, msg); err != nil {
		return nil, nil, "", err
	}

	payload := domain.EventPayload{
		MessageID:  msg.ID,
		SenderID:   senderID,
		ChatRoomID: roomID,
		Day:        day,
	}

	// 只有發送者一個成員的房間，建立時就是 Complete，事件照樣發出
	if msg.DeliveredStatus {
		uc.notifier.Emit(roomID, domain.EventMessageDelivered, payload)
	}
	if msg.ReadStatus {
		uc.notifier.Emit(roomID, domain.EventMessageReadByAllMembers, payload)
	}

	// 通知房間內除發送者外的成員有新訊息
	if uc.memberPubSub != nil {
		resp := domain.WSResponse{
			Action:  string(domain.NotifyMessage),
			Success: true,
			Payload: map[string]interface{}{
				"message_id":   msg.ID,
				"sender_id":    senderID,
				"chat_room_id": roomID,
				"day":          day,
				"content":      content,
				"time_sent":    timeSent,
			},
		}
		for _, memberID := range room.Members {
			if memberID != senderID {
				if err := uc.memberPubSub.Publish(repository.MemberChannel(memberID), resp); err != nil {
					logger.Log.Errorf("publish new message err :", err)
				}
			}
		}
	}

	return msg, room, day, nil
}

// Lookup locate a message by (room, day label, message id)
func (uc *SendMessageUseCase) Lookup(ctx context.Context, roomID, day, messageID string) (*domain.ChatRoom, *domain.Message, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	msg, err := lookupMessage(room, day, messageID)
	if err != nil {
		return nil, nil, err
	}
	return room, msg, nil
}

// lookupMessage walk the loaded room, precise not-found per level
func lookupMessage(room *domain.ChatRoom, day, messageID string) (*domain.Message, error) {
	if day == "" || messageID == "" {
		return nil, errprocess.Validation("day and message id are required")
	}
	bucket := room.Bucket(day)
	if bucket == nil {
		return nil, errprocess.NotFound("day bucket " + day)
	}
	msg := bucket.Message(messageID)
	if msg == nil {
		return nil, errprocess.NotFound("message " + messageID)
	}
	return msg, nil
}
