package app

import (
	"context"
	"errors"
	"testing"

	"chat_delivery_service/internal/chat/domain"
	errprocess "chat_delivery_service/pkg/err"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func deliveryTestRoom(roomID, day, messageID string, undelivered []string) *domain.ChatRoom {
	return &domain.ChatRoom{
		ID:      roomID,
		Members: []string{"member-a", "member-b", "member-c"},
		MessageHistory: []domain.DayBucket{
			{
				Day: day,
				Messages: []domain.Message{
					{
						ID:                 messageID,
						SenderID:           "member-a",
						UndeliveredMembers: undelivered,
						UnreadMembers:      []string{"member-b", "member-c"},
					},
				},
			},
		},
	}
}

// 測試部分成員確認送達: pending set 縮小，狀態不翻轉，不發事件
func TestDeliveryUseCase_AcknowledgeDelivery_Partial(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)

	room := deliveryTestRoom(roomID, day, messageID, []string{"member-a", "member-b", "member-c"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	post := &domain.Message{
		ID:                 messageID,
		SenderID:           "member-a",
		UndeliveredMembers: []string{"member-a", "member-c"},
	}
	mockRoomRepo.On("PullUndeliveredMembers", ctx, roomID, day, messageID, []string{"member-b"}).Return(post, nil)
	mockUserRepo.On("RemoveUndelivered", ctx, "member-b", messageID).Return(nil)

	uc := NewDeliveryUseCase(mockRoomRepo, mockUserRepo, mockNotifier)
	undelivered, delivered, err := uc.AcknowledgeDelivery(ctx, roomID, day, messageID, []string{"member-b"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"member-a", "member-c"}, undelivered)
	assert.False(t, delivered)

	mockRoomRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockRoomRepo.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
}

// 測試最後一批成員確認送達: 狀態翻轉，事件只發一次
func TestDeliveryUseCase_AcknowledgeDelivery_LastMembers(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)

	room := deliveryTestRoom(roomID, day, messageID, []string{"member-a", "member-c"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	post := &domain.Message{
		ID:                 messageID,
		SenderID:           "member-a",
		UndeliveredMembers: []string{},
	}
	acked := []string{"member-a", "member-c"}
	mockRoomRepo.On("PullUndeliveredMembers", ctx, roomID, day, messageID, acked).Return(post, nil)
	mockUserRepo.On("RemoveUndelivered", ctx, "member-a", messageID).Return(nil)
	mockUserRepo.On("RemoveUndelivered", ctx, "member-c", messageID).Return(nil)
	mockRoomRepo.On("MarkDelivered", ctx, roomID, day, messageID).Return(true, nil)

	expectedPayload := domain.EventPayload{
		MessageID:  messageID,
		SenderID:   "member-a",
		ChatRoomID: roomID,
		Day:        day,
	}
	mockNotifier.On("Emit", roomID, domain.EventMessageDelivered, expectedPayload).Return()

	uc := NewDeliveryUseCase(mockRoomRepo, mockUserRepo, mockNotifier)
	undelivered, delivered, err := uc.AcknowledgeDelivery(ctx, roomID, day, messageID, acked)

	assert.NoError(t, err)
	assert.Empty(t, undelivered)
	assert.True(t, delivered)

	mockRoomRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
	mockNotifier.AssertNumberOfCalls(t, "Emit", 1)
}

// 測試併發翻轉輸掉的呼叫端: 已送達但不重複發事件
func TestDeliveryUseCase_AcknowledgeDelivery_LostFlipRace(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)

	room := deliveryTestRoom(roomID, day, messageID, []string{"member-c"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	post := &domain.Message{
		ID:                 messageID,
		SenderID:           "member-a",
		UndeliveredMembers: []string{},
	}
	mockRoomRepo.On("PullUndeliveredMembers", ctx, roomID, day, messageID, []string{"member-c"}).Return(post, nil)
	mockUserRepo.On("RemoveUndelivered", ctx, "member-c", messageID).Return(nil)
	// 另一個呼叫端已翻轉
	mockRoomRepo.On("MarkDelivered", ctx, roomID, day, messageID).Return(false, nil)

	uc := NewDeliveryUseCase(mockRoomRepo, mockUserRepo, mockNotifier)
	_, delivered, err := uc.AcknowledgeDelivery(ctx, roomID, day, messageID, []string{"member-c"})

	assert.NoError(t, err)
	assert.True(t, delivered)
	mockNotifier.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
}

// 測試重複確認: 冪等，結果與第一次相同
func TestDeliveryUseCase_AcknowledgeDelivery_Idempotent(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)

	// member-b 已經被移除過
	room := deliveryTestRoom(roomID, day, messageID, []string{"member-a", "member-c"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	post := &domain.Message{
		ID:                 messageID,
		SenderID:           "member-a",
		UndeliveredMembers: []string{"member-a", "member-c"},
	}
	mockRoomRepo.On("PullUndeliveredMembers", ctx, roomID, day, messageID, []string{"member-b"}).Return(post, nil)
	mockUserRepo.On("RemoveUndelivered", ctx, "member-b", messageID).Return(nil)

	uc := NewDeliveryUseCase(mockRoomRepo, mockUserRepo, mockNotifier)
	undelivered, delivered, err := uc.AcknowledgeDelivery(ctx, roomID, day, messageID, []string{"member-b"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"member-a", "member-c"}, undelivered)
	assert.False(t, delivered)
	mockNotifier.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
}

// 測試訊息不存在
func TestDeliveryUseCase_AcknowledgeDelivery_MessageNotFound(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	room := deliveryTestRoom(roomID, day, "other-message", []string{"member-a"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	uc := NewDeliveryUseCase(mockRoomRepo, new(MockUserRepository), new(MockNotifier))
	_, _, err := uc.AcknowledgeDelivery(ctx, roomID, day, "missing-message", []string{"member-b"})

	assert.True(t, errors.Is(err, errprocess.ErrNotFound))
}

// 測試 RegisterUndelivered 逐一寫入收件夾
func TestDeliveryUseCase_RegisterUndelivered(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockUserRepo := new(MockUserRepository)
	ref := domain.MessageRef{Day: day, ChatRoomID: roomID, MessageID: messageID}
	mockUserRepo.On("AddUndelivered", ctx, "member-a", ref).Return(nil)
	mockUserRepo.On("AddUndelivered", ctx, "member-b", ref).Return(nil)

	uc := NewDeliveryUseCase(new(MockRoomRepository), mockUserRepo, new(MockNotifier))
	err := uc.RegisterUndelivered(ctx, roomID, day, messageID, []string{"member-a", "member-b"})

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

// 測試缺 member ids
func TestDeliveryUseCase_AcknowledgeDelivery_Validation(t *testing.T) {
	uc := NewDeliveryUseCase(new(MockRoomRepository), new(MockUserRepository), new(MockNotifier))
	_, _, err := uc.AcknowledgeDelivery(context.Background(), "room", "January 05", "msg", nil)

	assert.True(t, errors.Is(err, errprocess.ErrValidation))
}
