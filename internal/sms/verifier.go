package sms

import (
	"context"
	"log"
	"strings"

	"github.com/teja-0311/Kisanmarket/internal/config"
)

// Verifier defines the interface for phone verification. SendCode starts
// a verification for the given phone number; CheckCode reports whether
// the submitted code matches the one that was sent.
type Verifier interface {
	SendCode(ctx context.Context, phone string) error
	CheckCode(ctx context.Context, phone string, code string) (bool, error)
}

// Texter defines the interface for plain outbound SMS, used for
// best-effort order notifications.
type Texter interface {
	SendText(ctx context.Context, phone string, body string) error
}

// NormalizePhone prefixes the configured country code when the number is
// supplied without one.
func NormalizePhone(phone string, cfg *config.Config) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return cfg.PhoneCountryCode + phone
}

// LoggingVerifier is a mock implementation that logs instead of sending.
// Useful for development when Twilio isn't configured. Any code checks
// out against it.
type LoggingVerifier struct {
	cfg *config.Config
}

func NewLoggingVerifier(cfg *config.Config) *LoggingVerifier {
	return &LoggingVerifier{cfg: cfg}
}

func (v *LoggingVerifier) SendCode(ctx context.Context, phone string) error {
	log.Printf("--- Sending OTP (Logged) --- To: %s", NormalizePhone(phone, v.cfg))
	return nil
}

func (v *LoggingVerifier) CheckCode(ctx context.Context, phone string, code string) (bool, error) {
	log.Printf("--- Checking OTP (Logged) --- To: %s Code: %s (accepted)", NormalizePhone(phone, v.cfg), code)
	return true, nil
}

func (v *LoggingVerifier) SendText(ctx context.Context, phone string, body string) error {
	log.Printf("--- Sending SMS (Logged) --- To: %s Body: %s", NormalizePhone(phone, v.cfg), body)
	return nil
}
