package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

// ConversationSummary is one row of a user's conversation list.
// OtherUser is nil when the conversation has no second participant
// (malformed data); callers must handle that. LatestMessage is nil for
// conversations without messages.
type ConversationSummary struct {
	ConversationID int64           `json:"conversation_id"`
	OtherUser      *models.User    `json:"other_user"`
	LatestMessage  *models.Message `json:"latest_message"`
	UnreadCount    int64           `json:"unread_count"`
}

// SummaryService composes the per-user conversation list out of the
// directory, the message log and the read-state tracker. Pure computation,
// no mutation.
type SummaryService struct {
	messages  *MessageService
	readState *ReadStateService
}

func NewSummaryService() *SummaryService {
	return &SummaryService{
		messages:  NewMessageService(),
		readState: NewReadStateService(),
	}
}

// ListForUser returns one summary per conversation the user participates in,
// newest activity first. A user with no conversations gets an empty list.
func (ss *SummaryService) ListForUser(ctx context.Context, userID int64) ([]ConversationSummary, error) {
	var memberships []models.ConversationParticipant
	err := db.GetReadOnlyDB(ctx).
		Where("user_id = ?", userID).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(memberships))
	activity := make(map[int64]time.Time, len(memberships))

	for _, membership := range memberships {
		convID := membership.ConversationID

		var conversation models.Conversation
		if err := db.GetReadOnlyDB(ctx).First(&conversation, convID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling membership row, skip it rather than fail the list.
				log.Printf("conversation %d referenced by participant %d is gone", convID, membership.ID)
				continue
			}
			return nil, err
		}

		otherUser, err := ss.otherParticipant(ctx, convID, userID)
		if err != nil {
			return nil, err
		}

		latest, err := ss.messages.Latest(ctx, convID)
		if err != nil {
			return nil, err
		}

		unread, err := ss.readState.UnreadCount(ctx, convID, userID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, ConversationSummary{
			ConversationID: convID,
			OtherUser:      otherUser,
			LatestMessage:  latest,
			UnreadCount:    unread,
		})

		activity[convID] = conversation.CreatedAt
		if latest != nil {
			activity[convID] = latest.CreatedAt
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return activity[summaries[i].ConversationID].After(activity[summaries[j].ConversationID])
	})

	return summaries, nil
}

// otherParticipant resolves the participant of the conversation who is not
// the given user, or nil when none exists.
func (ss *SummaryService) otherParticipant(ctx context.Context, conversationID, userID int64) (*models.User, error) {
	var other models.ConversationParticipant
	err := db.GetReadOnlyDB(ctx).
		Where("conversation_id = ? AND user_id <> ?", conversationID, userID).
		Order("joined_at ASC").
		First(&other).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = db.GetReadOnlyDB(ctx).First(&user, other.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
