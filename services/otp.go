package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/argon2"

	"github.com/thepradipthapa/livechat/config"
)

// One-time codes live in Redis under otp:<email> with a short TTL. Only the
// argon2 hash of the code is stored, the plaintext exists in the email alone.

func otpTTL() time.Duration {
	if config.AppConfig != nil && config.AppConfig.Auth.OTPTTLSeconds > 0 {
		return time.Duration(config.AppConfig.Auth.OTPTTLSeconds) * time.Second
	}
	return 5 * time.Minute
}

func otpKey(email string) string {
	return "otp:" + email
}

// GenerateOTP returns a random 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// HashOTP derives an argon2id digest of the code with a fresh salt,
// encoded as hex(salt)$hex(hash).
func HashOTP(code string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(code), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// CheckOTPHash reports whether the code matches a digest produced by HashOTP.
func CheckOTPHash(digest, code string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	hash := argon2.IDKey([]byte(code), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(hash)), []byte(parts[1])) == 1
}

// StoreOTP hashes the code and stores it for the email with the OTP TTL,
// replacing any code issued earlier.
func StoreOTP(ctx context.Context, email, code string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}
	digest, err := HashOTP(code)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, otpKey(email), digest, otpTTL()).Err()
}

// VerifyOTP reports whether the code matches the one stored for the email.
// Expired or absent codes never match.
func VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	if RedisClient == nil {
		return false, fmt.Errorf("redis not available")
	}
	digest, err := RedisClient.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return CheckOTPHash(digest, code), nil
}

// ClearOTP removes the stored code after successful verification.
func ClearOTP(ctx context.Context, email string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}
	return RedisClient.Del(ctx, otpKey(email)).Err()
}
