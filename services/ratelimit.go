package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thepradipthapa/livechat/config"
)

// Rate-limit counters for the OTP flow, kept in Redis with TTLs matching
// their windows: one code request per email per minute, a bounded number of
// verification attempts per issued code.

func sendLimitKey(email string) string {
	return "ratelimit:send:otp:" + email
}

func verifyLimitKey(email, otp string) string {
	return "ratelimit:verify:otp:" + email + ":" + otp
}

// CanSendOTP reports whether the email may request a new code now.
// The first request opens a one-minute window.
func CanSendOTP(ctx context.Context, email string) (bool, error) {
	if RedisClient == nil {
		return false, fmt.Errorf("redis not available")
	}

	maxPerMinute := 1
	if config.AppConfig != nil && config.AppConfig.Auth.OTPSendPerMinute > 0 {
		maxPerMinute = config.AppConfig.Auth.OTPSendPerMinute
	}

	key := sendLimitKey(email)
	requests, err := RedisClient.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if requests == 1 {
		if err := RedisClient.Expire(ctx, key, time.Minute).Err(); err != nil {
			return false, err
		}
	}
	return requests <= int64(maxPerMinute), nil
}

// CanVerifyOTP reports whether another verification attempt is allowed for
// this code. The attempt counter lives as long as the code itself.
func CanVerifyOTP(ctx context.Context, email, otp string) (bool, error) {
	if RedisClient == nil {
		return false, fmt.Errorf("redis not available")
	}

	maxAttempts := 3
	if config.AppConfig != nil && config.AppConfig.Auth.OTPVerifyPerCode > 0 {
		maxAttempts = config.AppConfig.Auth.OTPVerifyPerCode
	}

	key := verifyLimitKey(email, otp)
	attempts, err := RedisClient.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if attempts == 1 {
		if err := RedisClient.Expire(ctx, key, otpTTL()).Err(); err != nil {
			return false, err
		}
	}
	return attempts <= int64(maxAttempts), nil
}
