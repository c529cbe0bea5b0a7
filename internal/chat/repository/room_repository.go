package repository

import (
	"context"
	"fmt"

	"chat_delivery_service/internal/chat/domain"
	errprocess "chat_delivery_service/pkg/err"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// appendRetryLimit 同房間併發 append 衝突時的重試上限
const appendRetryLimit = 3

// RoomRepository definition chat room aggregate, message history bucketed by day
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *domain.ChatRoom) error
	FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	DeleteRoom(ctx context.Context, roomID string) error
	// AppendMessage push msg to the last bucket if its day matches, else push a new
	// trailing bucket. Conditional on the history length observed in room.
	AppendMessage(ctx context.Context, room *domain.ChatRoom, day string, msg *domain.Message) error
	// PullUndeliveredMembers atomic subtraction from the message pending set,
	// returns the post-image message
	PullUndeliveredMembers(ctx context.Context, roomID, day, messageID string, memberIDs []string) (*domain.Message, error)
	// PullUnreadMember atomic subtraction of one reader, returns the post-image message
	PullUnreadMember(ctx context.Context, roomID, day, messageID, userID string) (*domain.Message, error)
	// MarkDelivered flip delivered_status once the pending set is empty.
	// Reports true only for the caller that actually flipped it.
	MarkDelivered(ctx context.Context, roomID, day, messageID string) (bool, error)
	// MarkReadByAll flip read_status once the pending set is empty
	MarkReadByAll(ctx context.Context, roomID, day, messageID string) (bool, error)
}

type chatRoomRepository struct {
	roomsColl *mongo.Collection
}

// NewMongoChatRoomRepository create new mongo chat room repository
func NewMongoChatRoomRepository(db *mongo.Database) RoomRepository {
	return &chatRoomRepository{
		roomsColl: db.Collection("chat_rooms"),
	}
}

// CreateRoom create room
func (r *chatRoomRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) error {
	// message_history 必須存在，append 的 $size 條件才有效
	if room.MessageHistory == nil {
		room.MessageHistory = []domain.DayBucket{}
	}
	_, err := r.roomsColl.InsertOne(ctx, room)
	return err
}

// FindByID find room by id
func (r *chatRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.roomsColl.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, errprocess.NotFound("chat room " + roomID)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// DeleteRoom delete room by id
func (r *chatRoomRepository) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := r.roomsColl.DeleteOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errprocess.NotFound("chat room " + roomID)
	}
	return nil
}

// AppendMessage conditional push, retry on concurrent history change
func (r *chatRoomRepository) AppendMessage(ctx context.Context, room *domain.ChatRoom, day string, msg *domain.Message) error {
	for attempt := 0; attempt < appendRetryLimit; attempt++ {
		n := len(room.MessageHistory)
		sizeGuard := bson.M{"$eq": bson.A{bson.M{"$size": "$message_history"}, n}}

		var filter, update bson.M
		if room.LastBucketMatches(day) {
			filter = bson.M{
				"_id": room.ID,
				fmt.Sprintf("message_history.%d.day", n-1): day,
				"$expr": sizeGuard,
			}
			update = bson.M{"$push": bson.M{fmt.Sprintf("message_history.%d.messages", n-1): msg}}
		} else {
			filter = bson.M{
				"_id":   room.ID,
				"$expr": sizeGuard,
			}
			update = bson.M{"$push": bson.M{"message_history": domain.DayBucket{
				Day:      day,
				Messages: []domain.Message{*msg},
			}}}
		}

		res, err := r.roomsColl.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 1 {
			return nil
		}

		// 另一個 writer 先改了 message_history，重讀再試
		fresh, err := r.FindByID(ctx, room.ID)
		if err != nil {
			return err
		}
		*room = *fresh
	}
	return errprocess.ConcurrentUpdate("append message to chat room " + room.ID)
}

// PullUndeliveredMembers atomic $pull, return post-image message
func (r *chatRoomRepository) PullUndeliveredMembers(ctx context.Context, roomID, day, messageID string, memberIDs []string) (*domain.Message, error) {
	update := bson.M{"$pull": bson.M{
		"message_history.$[b].messages.$[m].undelivered_members": bson.M{"$in": memberIDs},
	}}
	return r.pullFromPendingSet(ctx, roomID, day, messageID, update)
}

// PullUnreadMember atomic $pull of a single reader, return post-image message
func (r *chatRoomRepository) PullUnreadMember(ctx context.Context, roomID, day, messageID, userID string) (*domain.Message, error) {
	update := bson.M{"$pull": bson.M{
		"message_history.$[b].messages.$[m].unread_members": userID,
	}}
	return r.pullFromPendingSet(ctx, roomID, day, messageID, update)
}

func (r *chatRoomRepository) pullFromPendingSet(ctx context.Context, roomID, day, messageID string, update bson.M) (*domain.Message, error) {
	filter := bson.M{
		"_id": roomID,
		"message_history": bson.M{"$elemMatch": bson.M{
			"day":         day,
			"messages.id": messageID,
		}},
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"b.day": day},
			bson.M{"m.id": messageID},
		}}).
		SetReturnDocument(options.After)

	var room domain.ChatRoom
	err := r.roomsColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, errprocess.NotFound(fmt.Sprintf("message %s in chat room %s day %s", messageID, roomID, day))
	}
	if err != nil {
		return nil, err
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

// MarkDelivered conditional flip, ModifiedCount 決定是哪個呼叫端贏得 transition
func (r *chatRoomRepository) MarkDelivered(ctx context.Context, roomID, day, messageID string) (bool, error) {
	return r.flipTerminalFlag(ctx, roomID, day, messageID, "undelivered_members", "delivered_status")
}

// MarkReadByAll conditional flip of read_status
func (r *chatRoomRepository) MarkReadByAll(ctx context.Context, roomID, day, messageID string) (bool, error) {
	return r.flipTerminalFlag(ctx, roomID, day, messageID, "unread_members", "read_status")
}

func (r *chatRoomRepository) flipTerminalFlag(ctx context.Context, roomID, day, messageID, pendingField, statusField string) (bool, error) {
	filter := bson.M{
		"_id": roomID,
		"message_history": bson.M{"$elemMatch": bson.M{
			"day": day,
			"messages": bson.M{"$elemMatch": bson.M{
				"id":         messageID,
				pendingField: bson.M{"$size": 0},
				statusField:  false,
			}},
		}},
	}
	update := bson.M{"$set": bson.M{
		"message_history.$[b].messages.$[m]." + statusField: true,
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
		bson.M{"b.day": day},
		bson.M{"m.id": messageID},
	}})

	res, err := r.roomsColl.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
