package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

func TestListForUserWithNoConversations(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)

	summaries, err := NewSummaryService().ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestListForUserComposesSummaries(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)
	userB := createTestUser(t)
	userC := createTestUser(t)

	convAB := createTestConversation(t, userA.ID, userB.ID)
	convAC := createTestConversation(t, userA.ID, userC.ID)

	ms := NewMessageService()
	ctx := context.Background()
	_, err := ms.Append(ctx, convAB.ID, userB.ID, "from B")
	require.NoError(t, err)
	latest, err := ms.Append(ctx, convAB.ID, userB.ID, "again from B")
	require.NoError(t, err)

	summaries, err := NewSummaryService().ListForUser(ctx, userA.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byConv := make(map[int64]ConversationSummary, len(summaries))
	for _, s := range summaries {
		byConv[s.ConversationID] = s
	}

	withB := byConv[convAB.ID]
	require.NotNil(t, withB.OtherUser)
	assert.Equal(t, userB.ID, withB.OtherUser.ID)
	assert.Equal(t, userB.Email, withB.OtherUser.Email)
	require.NotNil(t, withB.LatestMessage)
	assert.Equal(t, latest.ID, withB.LatestMessage.ID)
	assert.Equal(t, int64(2), withB.UnreadCount)

	withC := byConv[convAC.ID]
	require.NotNil(t, withC.OtherUser)
	assert.Equal(t, userC.ID, withC.OtherUser.ID)
	assert.Nil(t, withC.LatestMessage)
	assert.Equal(t, int64(0), withC.UnreadCount)
}

func TestListForUserOrdersByActivity(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)
	userB := createTestUser(t)
	userC := createTestUser(t)

	convAB := createTestConversation(t, userA.ID, userB.ID)
	convAC := createTestConversation(t, userA.ID, userC.ID)

	// Only the A-C thread has a message, so it carries the newest activity.
	_, err := NewMessageService().Append(context.Background(), convAC.ID, userC.ID, "ping")
	require.NoError(t, err)

	summaries, err := NewSummaryService().ListForUser(context.Background(), userA.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, convAC.ID, summaries[0].ConversationID)
	assert.Equal(t, convAB.ID, summaries[1].ConversationID)
}

func TestListForUserHandlesMissingOtherParticipant(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)

	broken := models.Conversation{PairKey: "orphan"}
	require.NoError(t, db.ORM.Create(&broken).Error)
	require.NoError(t, db.ORM.Create(&models.ConversationParticipant{
		ConversationID: broken.ID,
		UserID:         userA.ID,
	}).Error)

	summaries, err := NewSummaryService().ListForUser(context.Background(), userA.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Nil(t, summaries[0].OtherUser)
}

func TestListForUserDoesNotMutateReadState(t *testing.T) {
	setupTestDB(t)
	userA := createTestUser(t)
	userB := createTestUser(t)
	conversation := createTestConversation(t, userA.ID, userB.ID)

	_, err := NewMessageService().Append(context.Background(), conversation.ID, userA.ID, "hello")
	require.NoError(t, err)

	ss := NewSummaryService()
	for i := 0; i < 2; i++ {
		summaries, err := ss.ListForUser(context.Background(), userB.ID)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, int64(1), summaries[0].UnreadCount)
	}
}
