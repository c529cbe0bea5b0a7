package domain

// Action websocket request action
type Action string

const (
	// CreateRoom websocket action create_room
	CreateRoom Action = "create_room"
	// DeleteRoom websocket action delete_room
	DeleteRoom Action = "delete_room"

	// EnterRoom websocket action enter_room
	EnterRoom Action = "enter_room"
	// LeaveRoom websocket action leave_room
	LeaveRoom Action = "leave_room"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// AckDelivery websocket action ack_delivery
	AckDelivery Action = "ack_delivery"
	// ReadMessage websocket action read_message
	ReadMessage Action = "read_message"

	// GetUndelivered websocket action get_undelivered
	GetUndelivered Action = "get_undelivered"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"

	// NotifyMessage websocket action notify_message
	NotifyMessage Action = "notify_message"
)

// WSRequest websocket Request
type WSRequest struct {
	Action    string   `json:"action"`
	RoomID    string   `json:"room_id"`
	Members   []string `json:"members"`
	Content   string   `json:"content"`
	Day       string   `json:"day"`
	MessageID string   `json:"message_id"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
