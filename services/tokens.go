package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/thepradipthapa/livechat/config"
	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/models"
)

// IssueToken mints a new opaque API token for the user. Earlier tokens stay
// valid until logout, so multiple devices can hold their own sessions.
func IssueToken(ctx context.Context, userID int64) (string, error) {
	length := 32
	if config.AppConfig != nil && config.AppConfig.Auth.TokenLengthBytes > 0 {
		length = config.AppConfig.Auth.TokenLengthBytes
	}

	tokenBytes := make([]byte, length)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	err := db.GetWriteDB(ctx).Create(&models.UserToken{
		UserID: userID,
		Token:  token,
	}).Error
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResolveToken maps a bearer token back to its user.
func ResolveToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: token is empty", ErrValidation)
	}
	var userToken models.UserToken
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: unknown token", ErrPermission)
	}
	if err != nil {
		return 0, err
	}
	return userToken.UserID, nil
}

// RevokeTokens deletes every token of the user. Idempotent.
func RevokeTokens(ctx context.Context, userID int64) error {
	return db.GetWriteDB(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserToken{}).Error
}
