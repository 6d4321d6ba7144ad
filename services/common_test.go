package services

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

// setupTestDB points the global ORM at a fresh in-memory sqlite database.
func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A pooled :memory: sqlite hands every new connection its own empty
	// database; pin the pool to one connection.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.UserToken{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db.ORM = gdb
}

// createTestUser inserts a user with generated name and email.
func createTestUser(t *testing.T) *models.User {
	t.Helper()

	user := models.User{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		IsActive: true,
	}
	if err := db.ORM.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

// createTestConversation wires a conversation with two participant rows.
func createTestConversation(t *testing.T, user1, user2 int64) *models.Conversation {
	t.Helper()

	conversation, created, err := NewConversationService().GetOrCreate(context.Background(), user1, user2)
	if err != nil {
		t.Fatalf("Failed to create test conversation: %v", err)
	}
	if !created {
		t.Fatalf("Expected a fresh conversation for pair (%d, %d)", user1, user2)
	}
	return conversation
}
