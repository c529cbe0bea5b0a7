package app

import (
	"context"
	"time"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/internal/chat/repository"
	errprocess "chat_delivery_service/pkg/err"

	"github.com/google/uuid"
)

// RoomUseCase - 聊天室生命週期 (建立 / 查詢 / 刪除)
type RoomUseCase struct {
	roomRepo repository.RoomRepository
}

// NewRoomUseCase init room use case
func NewRoomUseCase(r repository.RoomRepository) *RoomUseCase {
	return &RoomUseCase{
		roomRepo: r,
	}
}

// ExecuteRoom create room with initial membership
func (uc *RoomUseCase) ExecuteRoom(ctx context.Context, members []string) (string, error) {
	if len(members) == 0 {
		return "", errprocess.Validation("room must have at least 1 member")
	}

	room := &domain.ChatRoom{
		ID:             uuid.New().String(),
		Members:        members,
		MessageHistory: []domain.DayBucket{},
		CreatedAt:      time.Now().Unix(),
	}

	if err := uc.roomRepo.CreateRoom(ctx, room); err != nil {
		return "", err
	}
	return room.ID, nil
}

// GetRoom find room by id
func (uc *RoomUseCase) GetRoom(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	return uc.roomRepo.FindByID(ctx, roomID)
}

// DeleteRoom delete room by id
func (uc *RoomUseCase) DeleteRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return errprocess.Validation("room id is required")
	}
	return uc.roomRepo.DeleteRoom(ctx, roomID)
}
