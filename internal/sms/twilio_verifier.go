package sms

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	verify "github.com/twilio/twilio-go/rest/verify/v2"

	"github.com/teja-0311/Kisanmarket/internal/config"
)

// TwilioVerifier implements Verifier and Texter using the Twilio Verify
// and Messaging APIs.
type TwilioVerifier struct {
	client *twilio.RestClient
	cfg    *config.Config
}

// NewTwilioVerifier creates a new TwilioVerifier. It returns the concrete
// type; callers wire it in as a Verifier or Texter.
func NewTwilioVerifier(cfg *config.Config) *TwilioVerifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioVerifier{client: client, cfg: cfg}
}

// SendCode starts a Twilio verification for the phone number.
func (v *TwilioVerifier) SendCode(ctx context.Context, phone string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(NormalizePhone(phone, v.cfg))
	params.SetChannel("sms")

	resp, err := v.client.VerifyV2.CreateVerification(v.cfg.TwilioServiceSID, params)
	if err != nil {
		return fmt.Errorf("failed to start verification for %s: %w", phone, err)
	}
	if resp.Status != nil {
		log.Printf("Verification started for %s (status: %s)", phone, *resp.Status)
	}
	return nil
}

// CheckCode verifies the submitted code. Returns true only when Twilio
// reports the check as approved.
func (v *TwilioVerifier) CheckCode(ctx context.Context, phone string, code string) (bool, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(NormalizePhone(phone, v.cfg))
	params.SetCode(code)

	resp, err := v.client.VerifyV2.CreateVerificationCheck(v.cfg.TwilioServiceSID, params)
	if err != nil {
		return false, fmt.Errorf("failed to check verification for %s: %w", phone, err)
	}
	return resp.Status != nil && *resp.Status == "approved", nil
}

// SendText sends a plain SMS message.
func (v *TwilioVerifier) SendText(ctx context.Context, phone string, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(NormalizePhone(phone, v.cfg))
	params.SetFrom(v.cfg.TwilioFromNumber)
	params.SetBody(body)

	_, err := v.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", phone, err)
	}
	return nil
}
