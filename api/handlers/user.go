package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thepradipthapa/livechat/models"
	"github.com/thepradipthapa/livechat/services"
)

type UserInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func userInfoFrom(user *models.User) UserInfo {
	return UserInfo{ID: user.ID, Name: user.Name, Email: user.Email}
}

// Profile returns the authenticated user's own record.
func Profile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := services.GetUser(c.Request.Context(), userID.(int64))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userInfoFrom(user)})
}

// UserList returns all known users, the pool of possible chat targets.
func UserList(c *gin.Context) {
	limit := 50
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	users, err := services.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	userInfos := make([]UserInfo, 0, len(users))
	for i := range users {
		userInfos = append(userInfos, userInfoFrom(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": userInfos})
}

// UserGet returns a single user by ID.
func UserGet(c *gin.Context) {
	idParam := c.Param("id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := services.GetUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userInfoFrom(user)})
}
