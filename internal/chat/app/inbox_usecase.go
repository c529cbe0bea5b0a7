package app

import (
	"context"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/internal/chat/repository"
	errprocess "chat_delivery_service/pkg/err"
)

// InboxUseCase - 離線成員靠收件夾投影補齊，不用掃每個房間
type InboxUseCase struct {
	userRepo repository.UserRepository
}

// NewInboxUseCase init inbox use case
func NewInboxUseCase(userRepo repository.UserRepository) *InboxUseCase {
	return &InboxUseCase{
		userRepo: userRepo,
	}
}

// GetUndelivered list messages still owed to the user
func (uc *InboxUseCase) GetUndelivered(ctx context.Context, userID string) ([]domain.MessageRef, error) {
	if userID == "" {
		return nil, errprocess.Validation("user id is required")
	}
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.UndeliveredMessages, nil
}

// GetUnread list messages still unread by the user
func (uc *InboxUseCase) GetUnread(ctx context.Context, userID string) ([]domain.MessageRef, error) {
	if userID == "" {
		return nil, errprocess.Validation("user id is required")
	}
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.UnreadMessages, nil
}
