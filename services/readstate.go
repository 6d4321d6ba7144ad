package services

import (
	"context"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

// ReadStateService derives unread counts and performs bulk read-marking.
// UnreadCount is a pure read; MessageService.List is the mutating read used
// by thread views. The two must not be confused.
type ReadStateService struct{}

func NewReadStateService() *ReadStateService {
	return &ReadStateService{}
}

// UnreadCount counts the messages in the conversation addressed to the user
// and not yet read. No side effects.
func (rs *ReadStateService) UnreadCount(ctx context.Context, conversationID, userID int64) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips every unread message addressed to the user in the
// conversation to read. Idempotent: with nothing unread it is a no-op.
func (rs *ReadStateService) MarkRead(ctx context.Context, conversationID, userID int64) error {
	return db.GetWriteDB(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, userID, false).
		Update("is_read", true).Error
}
