package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thepradipthapa/livechat/api/middleware"
	"github.com/thepradipthapa/livechat/services"
)

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// Login issues a one-time code for the email and queues its delivery.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	ctx := c.Request.Context()

	allowed, err := services.CanSendOTP(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !allowed {
		middleware.RecordOTPOperation("send", "rate_limited", "livechat")
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many OTP requests, please try again later"})
		return
	}

	code, err := services.GenerateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := services.StoreOTP(ctx, req.Email, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	exists, err := services.UserExistsByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := services.EnqueueOTPEmail(ctx, req.Email, code); err != nil {
		// The code is stored; delivery failed. Surface it as a server fault
		// rather than leaving the caller waiting for an email that never comes.
		log.Println("Failed to enqueue OTP email:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP email"})
		return
	}

	middleware.RecordOTPOperation("send", "ok", "livechat")
	c.JSON(http.StatusOK, gin.H{
		"message":     "OTP sent to email",
		"is_new_user": !exists,
	})
}

// Verify checks the one-time code, creates the account on first login and
// returns an API token.
func Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	ctx := c.Request.Context()

	allowed, err := services.CanVerifyOTP(ctx, req.Email, req.OTP)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !allowed {
		middleware.RecordOTPOperation("verify", "rate_limited", "livechat")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many verification attempts"})
		return
	}

	ok, err := services.VerifyOTP(ctx, req.Email, req.OTP)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !ok {
		middleware.RecordOTPOperation("verify", "invalid", "livechat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		return
	}

	if err := services.ClearOTP(ctx, req.Email); err != nil {
		log.Println("Failed to clear OTP:", err)
	}

	user, created, err := services.GetOrCreateUserByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := services.IssueToken(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	middleware.RecordOTPOperation("verify", "ok", "livechat")
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"message":     "OTP verified successfully",
		"is_new_user": created,
		"user":        user,
		"token":       token,
	})
}

// Logout revokes every token of the authenticated user.
func Logout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := services.RevokeTokens(c.Request.Context(), userID.(int64)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
