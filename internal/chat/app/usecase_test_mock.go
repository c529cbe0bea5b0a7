package app

import (
	"context"

	"chat_delivery_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// CreateRoom mock create room
func (m *MockRoomRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

// FindByID mock find room by room id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteRoom mock delete room
func (m *MockRoomRepository) DeleteRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

// AppendMessage mock conditional append
func (m *MockRoomRepository) AppendMessage(ctx context.Context, room *domain.ChatRoom, day string, msg *domain.Message) error {
	args := m.Called(ctx, room, day, msg)
	return args.Error(0)
}

// PullUndeliveredMembers mock atomic subtraction from undelivered set
func (m *MockRoomRepository) PullUndeliveredMembers(ctx context.Context, roomID, day, messageID string, memberIDs []string) (*domain.Message, error) {
	args := m.Called(ctx, roomID, day, messageID, memberIDs)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// PullUnreadMember mock atomic subtraction from unread set
func (m *MockRoomRepository) PullUnreadMember(ctx context.Context, roomID, day, messageID, userID string) (*domain.Message, error) {
	args := m.Called(ctx, roomID, day, messageID, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkDelivered mock conditional flip of delivered_status
func (m *MockRoomRepository) MarkDelivered(ctx context.Context, roomID, day, messageID string) (bool, error) {
	args := m.Called(ctx, roomID, day, messageID)
	return args.Bool(0), args.Error(1)
}

// MarkReadByAll mock conditional flip of read_status
func (m *MockRoomRepository) MarkReadByAll(ctx context.Context, roomID, day, messageID string) (bool, error) {
	args := m.Called(ctx, roomID, day, messageID)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

// FindByID mock find user inbox
func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddUndelivered mock inbox set-insert
func (m *MockUserRepository) AddUndelivered(ctx context.Context, userID string, ref domain.MessageRef) error {
	args := m.Called(ctx, userID, ref)
	return args.Error(0)
}

// AddUnread mock inbox set-insert
func (m *MockUserRepository) AddUnread(ctx context.Context, userID string, ref domain.MessageRef) error {
	args := m.Called(ctx, userID, ref)
	return args.Error(0)
}

// RemoveUndelivered mock inbox prune
func (m *MockUserRepository) RemoveUndelivered(ctx context.Context, userID, messageID string) error {
	args := m.Called(ctx, userID, messageID)
	return args.Error(0)
}

// RemoveUnread mock inbox prune
func (m *MockUserRepository) RemoveUnread(ctx context.Context, userID, messageID string) error {
	args := m.Called(ctx, userID, messageID)
	return args.Error(0)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockPubSub) Publish(channel string, resp domain.WSResponse) error {
	args := m.Called(channel, resp)
	return args.Error(0)
}

// Subscribe mock subscriber
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(channel, handler)
	return args.Error(0)
}

// MockNotifier Mock Notifier
type MockNotifier struct {
	mock.Mock
}

// Emit mock terminal event fan-out
func (m *MockNotifier) Emit(roomID string, event domain.EventName, payload domain.EventPayload) {
	m.Called(roomID, event, payload)
}
