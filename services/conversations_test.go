package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

func TestGetOrCreateIsIdempotentPerPair(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)
	userB := createTestUser(t)

	cs := NewConversationService()
	ctx := context.Background()

	first, created, err := cs.GetOrCreate(ctx, userA.ID, userB.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// The reversed pair resolves to the same conversation.
	second, created, err := cs.GetOrCreate(ctx, userB.ID, userA.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.ORM.Model(&models.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateCreatesBothParticipants(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)
	userB := createTestUser(t)

	cs := NewConversationService()
	conversation, _, err := cs.GetOrCreate(context.Background(), userA.ID, userB.ID)
	require.NoError(t, err)

	participants, err := cs.Participants(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	ids := []int64{participants[0].UserID, participants[1].UserID}
	assert.ElementsMatch(t, []int64{userA.ID, userB.ID}, ids)
}

func TestGetOrCreateRejectsSelfChat(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)

	_, _, err := NewConversationService().GetOrCreate(context.Background(), userA.ID, userA.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetOrCreateRejectsMissingTarget(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)

	cs := NewConversationService()
	_, _, err := cs.GetOrCreate(context.Background(), userA.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = cs.GetOrCreate(context.Background(), userA.ID, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPairKeyUniquenessSurvivesRacingInsert(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)
	userB := createTestUser(t)

	// Simulate the loser of a first-contact race: the winner's row is
	// already in place when our lookup-then-create runs its insert.
	winner := models.Conversation{PairKey: models.ConversationPairKey(userA.ID, userB.ID)}
	require.NoError(t, db.ORM.Create(&winner).Error)

	loser := models.Conversation{PairKey: models.ConversationPairKey(userB.ID, userA.ID)}
	err := db.ORM.Create(&loser).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	// GetOrCreate falls back to the winner's conversation.
	require.NoError(t, db.ORM.Create(&[]models.ConversationParticipant{
		{ConversationID: winner.ID, UserID: userA.ID},
		{ConversationID: winner.ID, UserID: userB.ID},
	}).Error)

	conversation, created, err := NewConversationService().GetOrCreate(context.Background(), userA.ID, userB.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, conversation.ID)
}

func TestConversationPairKeyIsCanonical(t *testing.T) {
	assert.Equal(t, models.ConversationPairKey(7, 3), models.ConversationPairKey(3, 7))
	assert.Equal(t, "3:7", models.ConversationPairKey(7, 3))
}
