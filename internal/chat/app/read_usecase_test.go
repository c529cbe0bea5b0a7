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

func readTestRoom(roomID, day, messageID string, unread []string) *domain.ChatRoom {
	return &domain.ChatRoom{
		ID:      roomID,
		Members: []string{"member-a", "member-b", "member-c"},
		MessageHistory: []domain.DayBucket{
			{
				Day: day,
				Messages: []domain.Message{
					{
						ID:            messageID,
						SenderID:      "member-a",
						UnreadMembers: unread,
					},
				},
			},
		},
	}
}

// 測試單一成員已讀: pending set 縮小，收件夾修剪，不發事件
func TestReadUseCase_MarkRead(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)

	room := readTestRoom(roomID, day, messageID, []string{"member-b", "member-c"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	post := &domain.Message{
		ID:            messageID,
		SenderID:      "member-a",
		UnreadMembers: []string{"member-c"},
	}
	mockRoomRepo.On("PullUnreadMember", ctx, roomID, day, messageID, "member-b").Return(post, nil)
	mockUserRepo.On("RemoveUnread", ctx, "member-b", messageID).Return(nil)

	uc := NewReadUseCase(mockRoomRepo, mockUserRepo, mockNotifier)
	err := uc.MarkRead(ctx, roomID, day, messageID, "member-b")

	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockRoomRepo.AssertNotCalled(t, "MarkReadByAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
}

// 測試最後一個讀者: read_status 翻轉，事件只發一次
func TestReadUseCase_MarkRead_LastReader(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)

	room := readTestRoom(roomID, day, messageID, []string{"member-c"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	post := &domain.Message{
		ID:            messageID,
		SenderID:      "member-a",
		UnreadMembers: []string{},
	}
	mockRoomRepo.On("PullUnreadMember", ctx, roomID, day, messageID, "member-c").Return(post, nil)
	mockUserRepo.On("RemoveUnread", ctx, "member-c", messageID).Return(nil)
	mockRoomRepo.On("MarkReadByAll", ctx, roomID, day, messageID).Return(true, nil)

	expectedPayload := domain.EventPayload{
		MessageID:  messageID,
		SenderID:   "member-a",
		ChatRoomID: roomID,
		Day:        day,
	}
	mockNotifier.On("Emit", roomID, domain.EventMessageReadByAllMembers, expectedPayload).Return()

	uc := NewReadUseCase(mockRoomRepo, mockUserRepo, mockNotifier)
	err := uc.MarkRead(ctx, roomID, day, messageID, "member-c")

	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
	mockNotifier.AssertNumberOfCalls(t, "Emit", 1)
}

// 測試重複已讀: 冪等，狀態已翻轉時不再發事件
func TestReadUseCase_MarkRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)

	room := readTestRoom(roomID, day, messageID, []string{})
	room.MessageHistory[0].Messages[0].ReadStatus = true
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	post := &domain.Message{
		ID:            messageID,
		SenderID:      "member-a",
		UnreadMembers: []string{},
		ReadStatus:    true,
	}
	mockRoomRepo.On("PullUnreadMember", ctx, roomID, day, messageID, "member-c").Return(post, nil)
	mockUserRepo.On("RemoveUnread", ctx, "member-c", messageID).Return(nil)

	uc := NewReadUseCase(mockRoomRepo, mockUserRepo, mockNotifier)
	err := uc.MarkRead(ctx, roomID, day, messageID, "member-c")

	assert.NoError(t, err)
	mockRoomRepo.AssertNotCalled(t, "MarkReadByAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
}

// 測試 day bucket 不存在
func TestReadUseCase_MarkRead_BucketNotFound(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	room := readTestRoom(roomID, "January 05", messageID, []string{"member-b"})
	mockRoomRepo.On("FindByID", ctx, roomID).Return(room, nil)

	uc := NewReadUseCase(mockRoomRepo, new(MockUserRepository), new(MockNotifier))
	err := uc.MarkRead(ctx, roomID, "January 06", messageID, "member-b")

	assert.True(t, errors.Is(err, errprocess.ErrNotFound))
}

// 測試 RegisterUnread 逐一寫入收件夾
func TestReadUseCase_RegisterUnread(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	messageID := uuid.New().String()
	day := "January 05"

	mockUserRepo := new(MockUserRepository)
	ref := domain.MessageRef{Day: day, ChatRoomID: roomID, MessageID: messageID}
	mockUserRepo.On("AddUnread", ctx, "member-b", ref).Return(nil)
	mockUserRepo.On("AddUnread", ctx, "member-c", ref).Return(nil)

	uc := NewReadUseCase(new(MockRoomRepository), mockUserRepo, new(MockNotifier))
	err := uc.RegisterUnread(ctx, roomID, day, messageID, []string{"member-b", "member-c"})

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}
