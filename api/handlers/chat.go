package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thepradipthapa/livechat/api/middleware"
	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
	"github.com/thepradipthapa/livechat/services"
)

var (
	conversationService = services.NewConversationService()
	messageService      = services.NewMessageService()
	summaryService      = services.NewSummaryService()
)

// statusForError maps the service error taxonomy to HTTP statuses. The
// caller must be able to tell "not your conversation" (403) apart from
// "no such conversation" (404).
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		// ErrInvariant and anything unexpected is a server-side fault.
		return http.StatusInternalServerError
	}
}

func errorBody(err error) gin.H {
	if statusForError(err) == http.StatusInternalServerError {
		return gin.H{"error": "Internal server error"}
	}
	return gin.H{"error": err.Error()}
}

type CreateChatRequest struct {
	UserID int64 `json:"user_id"`
}

// CreateOrGetChat resolves the 1:1 conversation between the requester and
// the given user, creating it on first contact.
func CreateOrGetChat(c *gin.Context) {
	requesterID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	start := time.Now()
	conversation, created, err := conversationService.GetOrCreate(c.Request.Context(), requesterID.(int64), req.UserID)
	if err != nil {
		middleware.RecordChatOperation("create", "error", "livechat", time.Since(start))
		c.JSON(statusForError(err), errorBody(err))
		return
	}
	middleware.RecordChatOperation("create", "ok", "livechat", time.Since(start))

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"id":         conversation.ID,
		"name":       conversation.Name,
		"created_at": conversation.CreatedAt,
	})
}

// ChatList returns the requester's conversation summaries.
func ChatList(c *gin.Context) {
	requesterID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	start := time.Now()
	summaries, err := summaryService.ListForUser(c.Request.Context(), requesterID.(int64))
	if err != nil {
		middleware.RecordChatOperation("summary", "error", "livechat", time.Since(start))
		c.JSON(statusForError(err), errorBody(err))
		return
	}
	middleware.RecordChatOperation("summary", "ok", "livechat", time.Since(start))

	type summaryOut struct {
		ConversationID int64           `json:"conversation_id"`
		OtherUser      *UserInfo       `json:"other_user"`
		LatestMessage  *models.Message `json:"latest_message"`
		UnreadCount    int64           `json:"unread_count"`
	}
	out := make([]summaryOut, 0, len(summaries))
	for _, s := range summaries {
		row := summaryOut{
			ConversationID: s.ConversationID,
			LatestMessage:  s.LatestMessage,
			UnreadCount:    s.UnreadCount,
		}
		if s.OtherUser != nil {
			info := userInfoFrom(s.OtherUser)
			row.OtherUser = &info
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage appends a message to the conversation.
func SendMessage(c *gin.Context) {
	senderID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	start := time.Now()
	message, err := messageService.Append(c.Request.Context(), conversationID, senderID.(int64), req.Content)
	if err != nil {
		middleware.RecordChatOperation("send", "error", "livechat", time.Since(start))
		c.JSON(statusForError(err), errorBody(err))
		return
	}
	middleware.RecordChatOperation("send", "ok", "livechat", time.Since(start))

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// ListMessages returns the ordered conversation log and, as a side effect,
// marks everything addressed to the requester as read.
func ListMessages(c *gin.Context) {
	requesterID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation id"})
		return
	}

	start := time.Now()
	messages, err := messageService.List(c.Request.Context(), conversationID, requesterID.(int64))
	if err != nil {
		middleware.RecordChatOperation("list", "error", "livechat", time.Since(start))
		c.JSON(statusForError(err), errorBody(err))
		return
	}
	middleware.RecordChatOperation("list", "ok", "livechat", time.Since(start))

	senders, err := sendersByID(c, messages)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	type messageOut struct {
		ID        int64     `json:"id"`
		Content   string    `json:"content"`
		Sender    *UserInfo `json:"sender"`
		Timestamp time.Time `json:"timestamp"`
	}
	out := make([]messageOut, 0, len(messages))
	for _, m := range messages {
		row := messageOut{
			ID:        m.ID,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		}
		if sender, ok := senders[m.SenderID]; ok {
			info := userInfoFrom(&sender)
			row.Sender = &info
		}
		out = append(out, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"messages":        out,
	})
}

// sendersByID batch-loads the distinct senders of the given messages.
func sendersByID(c *gin.Context, messages []models.Message) (map[int64]models.User, error) {
	ids := make([]int64, 0, 2)
	seen := make(map[int64]bool, 2)
	for _, m := range messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			ids = append(ids, m.SenderID)
		}
	}

	senders := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return senders, nil
	}

	var users []models.User
	err := db.GetReadOnlyDB(c.Request.Context()).Where("id IN (?)", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		senders[u.ID] = u
	}
	return senders, nil
}
