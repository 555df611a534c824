// Package notifications delivers OTP codes and account notices for the
// stub backend.
package notifications

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/danaam/danaam-go/domain"
)

// TwilioService implements domain.NotificationService. Without configured
// credentials it logs messages instead of sending them, which is what the
// stub does in tests and most local runs.
type TwilioService struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioService creates a new Twilio notification service.
func NewTwilioService(accountSID, authToken, fromNumber string) *TwilioService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioService{client: client, fromNumber: fromNumber}
}

// SendSMS implements domain.NotificationService.
func (t *TwilioService) SendSMS(to, message string) error {
	if t.fromNumber == "" {
		fmt.Printf("[MOCK SMS] To: %s, Message: %s\n", to, message)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

// SendEmail implements domain.NotificationService. The stub has no mail
// provider; OTP emails land in the log, which is exactly what the
// integration tests read past.
func (t *TwilioService) SendEmail(to, subject, body string) error {
	fmt.Printf("[MOCK EMAIL] To: %s, Subject: %s, Body: %s\n", to, subject, body)
	return nil
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*TwilioService)(nil)
