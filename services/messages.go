package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

// MessageService is the append-only, per-conversation message log.
// Appends tag the receiver as "the other participant at send time";
// listing a thread doubles as the read receipt for the requester.
type MessageService struct{}

func NewMessageService() *MessageService {
	return &MessageService{}
}

// Append persists a new unread message from sender into the conversation.
func (ms *MessageService) Append(ctx context.Context, conversationID, senderID int64, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}

	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		IsRead:         false,
	}

	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkConversationAccess(tx, conversationID, senderID); err != nil {
			return err
		}

		receiverID, err := resolveReceiver(tx, conversationID, senderID)
		if err != nil {
			return err
		}
		message.ReceiverID = receiverID

		return tx.Create(&message).Error
	})
	if err != nil {
		return nil, err
	}

	// Best-effort push to the receiver's live connections. The stored row is
	// the source of truth, a failed publish is only logged.
	PublishMessageEvent(ctx, &message)

	return &message, nil
}

// List returns the full conversation log ordered by creation time, marking
// every message still unread to the requester as read first. Viewing the
// thread is the read acknowledgment.
func (ms *MessageService) List(ctx context.Context, conversationID, requesterID int64) ([]models.Message, error) {
	if err := checkConversationAccess(db.GetReadOnlyDB(ctx), conversationID, requesterID); err != nil {
		return nil, err
	}

	err := db.GetWriteDB(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, requesterID, false).
		Update("is_read", true).Error
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	err = db.GetReadOnlyDB(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Latest returns the newest message of the conversation, or nil when empty.
func (ms *MessageService) Latest(ctx context.Context, conversationID int64) (*models.Message, error) {
	var message models.Message
	err := db.GetReadOnlyDB(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// checkConversationAccess distinguishes "no such conversation" (ErrNotFound)
// from "not your conversation" (ErrPermission). tx may arrive in chain mode
// (a Clauses-routed connection already carries a statement), so each query
// gets its own session or the second count inherits the first one's table
// and conditions.
func checkConversationAccess(tx *gorm.DB, conversationID, userID int64) error {
	var count int64
	err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: conversation not found", ErrNotFound)
	}

	err = tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: not a participant of this conversation", ErrPermission)
	}
	return nil
}

// resolveReceiver finds the single participant of the conversation who is
// not the sender.
func resolveReceiver(tx *gorm.DB, conversationID, senderID int64) (int64, error) {
	var others []models.ConversationParticipant
	err := tx.Where("conversation_id = ? AND user_id <> ?", conversationID, senderID).
		Find(&others).Error
	if err != nil {
		return 0, err
	}
	if len(others) == 0 {
		return 0, fmt.Errorf("%w: conversation has no other participant", ErrInvariant)
	}
	if len(others) > 1 {
		return 0, fmt.Errorf("%w: conversation has %d other participants", ErrInvariant, len(others))
	}
	return others[0].UserID, nil
}
