package models

import (
	"fmt"
	"time"
)

// Conversation is a 1:1 chat thread. Exactly two participant rows point at
// each conversation; PairKey is the canonical key of that pair and carries a
// uniqueness constraint so concurrent first-contact requests cannot create
// two threads for the same pair of users.
type Conversation struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      *string   `gorm:"size:128" json:"name"`
	PairKey   string    `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ConversationPairKey returns the canonical key for an unordered user pair.
func ConversationPairKey(user1, user2 int64) string {
	if user1 > user2 {
		user1, user2 = user2, user1
	}
	return fmt.Sprintf("%d:%d", user1, user2)
}

// ConversationParticipant links a user to a conversation. A (conversation,
// user) pair is unique; rows are removed together with the conversation.
type ConversationParticipant struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int64     `gorm:"index:conversation_user_idx,unique" json:"conversation_id"`
	UserID         int64     `gorm:"index:conversation_user_idx,unique;index" json:"user_id"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// Message is an immutable log entry in a conversation. The receiver is
// denormalized at send time. IsRead only ever flips false -> true.
// Ordering within a conversation is (created_at, id).
type Message struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int64     `gorm:"index:msg_conversation_created_idx" json:"conversation_id"`
	SenderID       int64     `gorm:"index" json:"sender_id"`
	ReceiverID     int64     `gorm:"index" json:"receiver_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:msg_conversation_created_idx" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
