package domain

import (
	"time"

	"chat_delivery_service/pkg"
)

// DayLabelLayout 月 + 2位數日，不含年份。只當作 bucket 的相等鍵，不再解析回日期
const DayLabelLayout = "January 02"

// DayLabel day bucket label for the send time
func DayLabel(timeSent int64) string {
	return time.Unix(timeSent, 0).Format(DayLabelLayout)
}

// ChatRoom definition chat room
type ChatRoom struct {
	ID             string      `bson:"_id,omitempty" json:"id"`
	Members        []string    `bson:"members,omitempty" json:"members"`
	MessageHistory []DayBucket `bson:"message_history" json:"message_history"`
	CreatedAt      int64       `bson:"created_at,omitempty" json:"created_at"`
}

// DayBucket 表示某個聊天室某天的訊息存儲
type DayBucket struct {
	Day      string    `bson:"day" json:"day"`
	Messages []Message `bson:"messages" json:"messages"`
}

// Message 表示一則聊天訊息，帶每個成員的送達/已讀追蹤
type Message struct {
	ID                 string   `bson:"id" json:"id"`
	SenderID           string   `bson:"sender_id" json:"sender_id"`
	Content            string   `bson:"content" json:"content"`
	TimeSent           int64    `bson:"time_sent" json:"time_sent"`
	UndeliveredMembers []string `bson:"undelivered_members" json:"undelivered_members"`
	UnreadMembers      []string `bson:"unread_members" json:"unread_members"`
	DeliveredStatus    bool     `bson:"delivered_status" json:"delivered_status"`
	ReadStatus         bool     `bson:"read_status" json:"read_status"`
}

// LastBucketMatches 只檢查最後一個 bucket 的 day。先前 bucket 即使同 day 也會開新 bucket
func (r *ChatRoom) LastBucketMatches(day string) bool {
	if len(r.MessageHistory) == 0 {
		return false
	}
	return r.MessageHistory[len(r.MessageHistory)-1].Day == day
}

// Bucket find day bucket by exact label match
func (r *ChatRoom) Bucket(day string) *DayBucket {
	for i := range r.MessageHistory {
		if r.MessageHistory[i].Day == day {
			return &r.MessageHistory[i]
		}
	}
	return nil
}

// Message find message by id in the bucket
func (b *DayBucket) Message(messageID string) *Message {
	for i := range b.Messages {
		if b.Messages[i].ID == messageID {
			return &b.Messages[i]
		}
	}
	return nil
}

// InitPendingSets seed undelivered/unread from current membership, sender excluded from unread.
// 只有發送者一個成員的房間，訊息建立時就是 Complete
func (m *Message) InitPendingSets(members []string) {
	m.UndeliveredMembers = append([]string{}, members...)
	m.UnreadMembers = pkg.Remove(members, m.SenderID)
	if len(members) == 1 && members[0] == m.SenderID {
		m.UndeliveredMembers = []string{}
	}
	m.DeliveredStatus = len(m.UndeliveredMembers) == 0
	m.ReadStatus = len(m.UnreadMembers) == 0
}

// Delivered pending set empty
func (m *Message) Delivered() bool {
	return len(m.UndeliveredMembers) == 0
}

// Read pending set empty
func (m *Message) Read() bool {
	return len(m.UnreadMembers) == 0
}
