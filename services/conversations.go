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

// ConversationService resolves an unordered pair of users to a single
// canonical conversation. Creation is idempotent per pair: the pair key
// carries a uniqueness constraint, so losing a concurrent first-contact
// race degrades to a re-lookup.
type ConversationService struct{}

func NewConversationService() *ConversationService {
	return &ConversationService{}
}

// GetOrCreate returns the conversation between requester and the other user,
// creating it (with both participant rows) when none exists.
func (cs *ConversationService) GetOrCreate(ctx context.Context, requesterID, otherUserID int64) (*models.Conversation, bool, error) {
	if otherUserID == 0 {
		return nil, false, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if requesterID == otherUserID {
		return nil, false, fmt.Errorf("%w: cannot chat with yourself", ErrValidation)
	}

	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).Where("id = ?", otherUserID).Count(&count).Error
	if err != nil {
		return nil, false, err
	}
	if count == 0 {
		return nil, false, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	pairKey := models.ConversationPairKey(requesterID, otherUserID)

	var conversation models.Conversation
	err = db.GetReadOnlyDB(ctx).Where("pair_key = ?", pairKey).First(&conversation).Error
	if err == nil {
		return &conversation, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	conversation = models.Conversation{PairKey: pairKey}
	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		participants := []models.ConversationParticipant{
			{ConversationID: conversation.ID, UserID: requesterID},
			{ConversationID: conversation.ID, UserID: otherUserID},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		// Lost the race against the other user's first contact: the unique
		// pair key rejected our insert, the winner's row is authoritative.
		if isUniqueViolation(err) {
			var existing models.Conversation
			if lookupErr := db.GetWriteDB(ctx).Where("pair_key = ?", pairKey).First(&existing).Error; lookupErr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}

	return &conversation, true, nil
}

// Participants returns the membership rows of a conversation.
func (cs *ConversationService) Participants(ctx context.Context, conversationID int64) ([]models.ConversationParticipant, error) {
	var participants []models.ConversationParticipant
	err := db.GetReadOnlyDB(ctx).
		Where("conversation_id = ?", conversationID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres 23505 / sqlite "UNIQUE constraint failed" both mention the word.
	return err != nil && (strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(strings.ToUpper(err.Error()), "UNIQUE"))
}
