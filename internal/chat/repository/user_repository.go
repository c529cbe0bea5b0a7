package repository

import (
	"context"

	"chat_delivery_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository definition user inbox projection (undelivered / unread lists)
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	// AddUndelivered set-insert, duplicate register is a no-op
	AddUndelivered(ctx context.Context, userID string, ref domain.MessageRef) error
	AddUnread(ctx context.Context, userID string, ref domain.MessageRef) error
	// RemoveUndelivered prune entry, matched by message id only
	RemoveUndelivered(ctx context.Context, userID, messageID string) error
	RemoveUnread(ctx context.Context, userID, messageID string) error
}

type userInboxRepository struct {
	usersColl *mongo.Collection
}

// NewMongoUserRepository create new mongo user inbox repository
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &userInboxRepository{
		usersColl: db.Collection("users"),
	}
}

// FindByID find user inbox by id. 沒註冊過的 user 視為空收件夾
func (r *userInboxRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := r.usersColl.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return &domain.User{
			ID:                  userID,
			UndeliveredMessages: []domain.MessageRef{},
			UnreadMessages:      []domain.MessageRef{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddUndelivered $addToSet upsert
func (r *userInboxRepository) AddUndelivered(ctx context.Context, userID string, ref domain.MessageRef) error {
	return r.addRef(ctx, userID, "undelivered_messages", ref)
}

// AddUnread $addToSet upsert
func (r *userInboxRepository) AddUnread(ctx context.Context, userID string, ref domain.MessageRef) error {
	return r.addRef(ctx, userID, "unread_messages", ref)
}

func (r *userInboxRepository) addRef(ctx context.Context, userID, field string, ref domain.MessageRef) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$addToSet": bson.M{field: ref}}
	_, err := r.usersColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// RemoveUndelivered $pull by message_id
func (r *userInboxRepository) RemoveUndelivered(ctx context.Context, userID, messageID string) error {
	return r.removeRef(ctx, userID, "undelivered_messages", messageID)
}

// RemoveUnread $pull by message_id
func (r *userInboxRepository) RemoveUnread(ctx context.Context, userID, messageID string) error {
	return r.removeRef(ctx, userID, "unread_messages", messageID)
}

func (r *userInboxRepository) removeRef(ctx context.Context, userID, field, messageID string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$pull": bson.M{field: bson.M{"message_id": messageID}}}
	_, err := r.usersColl.UpdateOne(ctx, filter, update)
	return err
}
