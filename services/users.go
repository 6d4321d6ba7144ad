package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

// GetUser returns the user with the given ID.
func GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all known users.
func ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := db.GetReadOnlyDB(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserExistsByEmail reports whether an account with the email exists.
func UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetOrCreateUserByEmail returns the account for the email, creating it on
// first verified login with a name derived from the email local part.
func GetOrCreateUserByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	var user models.User
	err := db.GetWriteDB(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{
		Email:    email,
		Name:     NameFromEmail(email),
		IsActive: true,
	}
	if err := db.GetWriteDB(ctx).Create(&user).Error; err != nil {
		// Concurrent first login with the same email: the unique index on
		// email rejected our insert, re-read the winner's row.
		if isUniqueViolation(err) {
			if lookupErr := db.GetWriteDB(ctx).Where("email = ?", email).First(&user).Error; lookupErr == nil {
				return &user, false, nil
			}
		}
		return nil, false, err
	}
	return &user, true, nil
}

// NameFromEmail derives a display name from the local part of an email:
// dots and underscores become spaces, each word is capitalized.
func NameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	cleaned := strings.NewReplacer(".", " ", "_", " ").Replace(local)
	words := strings.Fields(cleaned)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
