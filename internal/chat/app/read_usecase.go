package app

import (
	"context"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/internal/chat/repository"
	errprocess "chat_delivery_service/pkg/err"
)

// ReadUseCase 負責已讀狀態機: pending -> read by all
type ReadUseCase struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
	notifier repository.Notifier
}

// NewReadUseCase init read use case
func NewReadUseCase(
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	notifier repository.Notifier,
) *ReadUseCase {
	return &ReadUseCase{
		roomRepo: roomRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// MarkRead remove the reader from the message unread set and prune the reader's
// unread inbox, matched by message id only. Idempotent
func (uc *ReadUseCase) MarkRead(ctx context.Context, roomID, day, messageID, userID string) error {
	if roomID == "" || userID == "" {
		return errprocess.Validation("room id and user id are required")
	}

	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := lookupMessage(room, day, messageID); err != nil {
		return err
	}

	post, err := uc.roomRepo.PullUnreadMember(ctx, roomID, day, messageID, userID)
	if err != nil {
		return err
	}

	if err := uc.userRepo.RemoveUnread(ctx, userID, messageID); err != nil {
		return err
	}

	if post.Read() && !post.ReadStatus {
		flipped, err := uc.roomRepo.MarkReadByAll(ctx, roomID, day, messageID)
		if err != nil {
			return err
		}
		if flipped {
			uc.notifier.Emit(roomID, domain.EventMessageReadByAllMembers, domain.EventPayload{
				MessageID:  messageID,
				SenderID:   post.SenderID,
				ChatRoomID: roomID,
				Day:        day,
			})
		}
	}

	return nil
}

// RegisterUnread populate每個初始未讀成員的 unread 收件夾。set-insert，重複呼叫不會產生重複條目
func (uc *ReadUseCase) RegisterUnread(ctx context.Context, roomID, day, messageID string, memberIDs []string) error {
	if roomID == "" || day == "" || messageID == "" {
		return errprocess.Validation("room id, day and message id are required")
	}

	ref := domain.MessageRef{
		Day:        day,
		ChatRoomID: roomID,
		MessageID:  messageID,
	}
	for _, memberID := range memberIDs {
		if err := uc.userRepo.AddUnread(ctx, memberID, ref); err != nil {
			return err
		}
	}
	return nil
}
