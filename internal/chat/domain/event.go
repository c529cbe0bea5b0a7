package domain

// EventName room scoped terminal event
type EventName string

const (
	// EventMessageDelivered fired once when undelivered_members empties
	EventMessageDelivered EventName = "user:messageDelivered"
	// EventMessageReadByAllMembers fired once when unread_members empties
	EventMessageReadByAllMembers EventName = "user:messageReadByAllMembers"
)

// EventPayload carried by both terminal events
type EventPayload struct {
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ChatRoomID string `json:"chat_room_id"`
	Day        string `json:"day"`
}
