package app

import (
	"context"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/internal/chat/repository"
	errprocess "chat_delivery_service/pkg/err"
)

// DeliveryUseCase 負責送達狀態機: pending -> delivered，成員只會被移除不會加回
type DeliveryUseCase struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
	notifier repository.Notifier
}

// NewDeliveryUseCase init delivery use case
func NewDeliveryUseCase(
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	notifier repository.Notifier,
) *DeliveryUseCase {
	return &DeliveryUseCase{
		roomRepo: roomRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// AcknowledgeDelivery remove memberIDs from the message undelivered set.
// Idempotent, re-acknowledge is a no-op. Returns the remaining pending set
// and whether the message is now delivered to everyone.
func (uc *DeliveryUseCase) AcknowledgeDelivery(ctx context.Context, roomID, day, messageID string, memberIDs []string) ([]string, bool, error) {
	if roomID == "" || len(memberIDs) == 0 {
		return nil, false, errprocess.Validation("room id and member ids are required")
	}

	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, false, err
	}
	if _, err := lookupMessage(room, day, messageID); err != nil {
		return nil, false, err
	}

	post, err := uc.roomRepo.PullUndeliveredMembers(ctx, roomID, day, messageID, memberIDs)
	if err != nil {
		return nil, false, err
	}

	// 同步修剪每個已確認成員的收件夾
	for _, memberID := range memberIDs {
		if err := uc.userRepo.RemoveUndelivered(ctx, memberID, messageID); err != nil {
			return nil, false, err
		}
	}

	delivered := post.DeliveredStatus
	if post.Delivered() && !post.DeliveredStatus {
		flipped, err := uc.roomRepo.MarkDelivered(ctx, roomID, day, messageID)
		if err != nil {
			return nil, false, err
		}
		delivered = true
		// ModifiedCount 為 1 的呼叫端才發事件，避免併發重複通知
		if flipped {
			uc.notifier.Emit(roomID, domain.EventMessageDelivered, domain.EventPayload{
				MessageID:  messageID,
				SenderID:   post.SenderID,
				ChatRoomID: roomID,
				Day:        day,
			})
		}
	}

	return post.UndeliveredMembers, delivered, nil
}

// RegisterUndelivered populate每個成員的 undelivered 收件夾，一則訊息一次。
// set-insert，重複呼叫不會產生重複條目
func (uc *DeliveryUseCase) RegisterUndelivered(ctx context.Context, roomID, day, messageID string, memberIDs []string) error {
	if roomID == "" || day == "" || messageID == "" {
		return errprocess.Validation("room id, day and message id are required")
	}

	ref := domain.MessageRef{
		Day:        day,
		ChatRoomID: roomID,
		MessageID:  messageID,
	}
	for _, memberID := range memberIDs {
		if err := uc.userRepo.AddUndelivered(ctx, memberID, ref); err != nil {
			return err
		}
	}
	return nil
}
