package db

import (
	"fmt"

	"gorm.io/gorm"
)

// EnsureMessageIndexes creates the covering indexes the chat queries rely on:
// thread listing orders by (conversation_id, created_at, id) and unread
// counting filters on (conversation_id, receiver_id, is_read).
func EnsureMessageIndexes(db *gorm.DB) error {
	createOrderSQL := `
		CREATE INDEX IF NOT EXISTS idx_messages_conversation_created_id
		ON messages (conversation_id, created_at, id);
	`
	if err := db.Exec(createOrderSQL).Error; err != nil {
		return fmt.Errorf("failed to create message ordering index: %w", err)
	}

	createUnreadSQL := `
		CREATE INDEX IF NOT EXISTS idx_messages_conversation_receiver_unread
		ON messages (conversation_id, receiver_id, is_read);
	`
	if err := db.Exec(createUnreadSQL).Error; err != nil {
		return fmt.Errorf("failed to create unread index: %w", err)
	}
	return nil
}
