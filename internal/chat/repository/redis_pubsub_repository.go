package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RoomChannel room scoped broadcast channel
func RoomChannel(roomID string) string {
	return "chat:room:" + roomID
}

// MemberChannel personal channel, one per connected member
func MemberChannel(memberID string) string {
	return "chat:user:" + memberID
}

// PubSub room/member broadcast primitive
type PubSub interface {
	Publish(channel string, resp domain.WSResponse) error
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish 將 response 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(channel string, resp domain.WSResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe 訂閱 channel，收到訊息後呼叫 handler 處理
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var resp domain.WSResponse
				if err := json.Unmarshal([]byte(m.Payload), &resp); err != nil {
					logger.Log.Errorf("pubsub unmarshal err :", err)
					continue
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				// 當 ctx 被取消時，退出循環並關閉訂閱
				sub.Close()
				return
			}
		}
	}()
	return nil
}
