package sms

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teja-0311/Kisanmarket/internal/config"
)

// RedisVerifier implements Verifier and Texter by storing codes and
// texts in Redis instead of calling Twilio. Used when MOCK_SERVICES is
// enabled so integration tests can read the code back.
type RedisVerifier struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisVerifier creates a new RedisVerifier.
func NewRedisVerifier(client *redis.Client, cfg *config.Config) *RedisVerifier {
	return &RedisVerifier{client: client, cfg: cfg}
}

func (v *RedisVerifier) otpKey(phone string) string {
	return fmt.Sprintf("mockotp:%s", NormalizePhone(phone, v.cfg))
}

// SendCode generates a random 6-digit code and stores it with a TTL.
func (v *RedisVerifier) SendCode(ctx context.Context, phone string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	key := v.otpKey(phone)
	if err := v.client.Set(ctx, key, code, v.cfg.OtpTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification code in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock OTP stored in Redis key '%s' (TTL: %v)", key, v.cfg.OtpTTL)
	return nil
}

// CheckCode compares the submitted code against the stored one and
// consumes it on success.
func (v *RedisVerifier) CheckCode(ctx context.Context, phone string, code string) (bool, error) {
	key := v.otpKey(phone)
	stored, err := v.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read verification code from Redis key '%s': %w", key, err)
	}
	if stored != code {
		return false, nil
	}
	if err := v.client.Del(ctx, key).Err(); err != nil {
		log.Printf("Failed to delete consumed OTP key '%s': %v", key, err)
	}
	return true, nil
}

// SendText stores a representation of the SMS in Redis instead of
// sending it.
func (v *RedisVerifier) SendText(ctx context.Context, phone string, body string) error {
	data := map[string]interface{}{
		"to":      NormalizePhone(phone, v.cfg),
		"body":    body,
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS data: %w", err)
	}

	key := fmt.Sprintf("mocksms:%s", NormalizePhone(phone, v.cfg))
	ttl := 5 * time.Minute
	if err := v.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store SMS in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock SMS stored in Redis key '%s' (TTL: %v)", key, ttl)
	return nil
}
