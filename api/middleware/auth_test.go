package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
	"github.com/thepradipthapa/livechat/services"
)

func setupAuthTest(t *testing.T) *models.User {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled :memory: sqlite hands every new connection its own empty
	// database; pin the pool to one connection.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.UserToken{}))
	db.ORM = gdb

	user := models.User{Name: "Auth Probe", Email: "auth.probe@example.com", IsActive: true}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func TestAuthMiddleware(t *testing.T) {
	user := setupAuthTest(t)

	token, err := services.IssueToken(context.Background(), user.ID)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/probe", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	// Valid bearer token.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Missing header.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/probe", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown token.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer deadbeef")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
