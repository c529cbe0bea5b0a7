package domain

// MessageRef locate a message by (chat room, day label, message id)
type MessageRef struct {
	Day        string `bson:"day" json:"day"`
	ChatRoomID string `bson:"chat_room_id" json:"chat_room_id"`
	MessageID  string `bson:"message_id" json:"message_id"`
}

// User 每個 user 的收件夾投影，未送達/未讀訊息清單
type User struct {
	ID                   string       `bson:"_id,omitempty" json:"id"`
	UndeliveredMessages  []MessageRef `bson:"undelivered_messages" json:"undelivered_messages"`
	UnreadMessages       []MessageRef `bson:"unread_messages" json:"unread_messages"`
}

// Presence member online status, kept in redis with TTL
type Presence struct {
	Online   bool  `json:"online"`
	LastSeen int64 `json:"last_seen"`
}
