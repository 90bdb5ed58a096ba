// Package notification delivers one-time codes to cashiers. Delivery is best
// effort: the OTP engine logs failures and carries on, because an undelivered
// code is still verifiable.
package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tillpoint/config"
	"tillpoint/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers a one-time code to a destination.
type Sender interface {
	Send(destination, code string, expiryMinutes int) error
}

// DefaultSender routes by destination shape: addresses containing "@" go out
// over SMTP, everything else over the SMS gateway.
type DefaultSender struct {
	HTTPClient *http.Client
}

// NewDefaultSender constructs the production sender.
func NewDefaultSender() *DefaultSender {
	return &DefaultSender{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *DefaultSender) Send(destination, code string, expiryMinutes int) error {
	message := fmt.Sprintf("Your Tillpoint sign-in code is %s. It expires in %d minutes.", code, expiryMinutes)
	if strings.Contains(destination, "@") {
		return s.sendEmail(destination, message)
	}
	return s.sendSMS(destination, message)
}

// sendSMS posts the message to the configured SMS gateway.
func (s *DefaultSender) sendSMS(phone, message string) error {
	gatewayURL := config.AppConfig.SMSGatewayURL
	if gatewayURL == "" {
		return fmt.Errorf("sms gateway is not configured")
	}

	payload := map[string]string{
		"phone":   phone,
		"message": message,
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to build sms payload: %w", err)
	}

	resp, err := s.HTTPClient.Post(gatewayURL, "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to reach sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		utils.GetLogger().Warn("SMS gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// sendEmail delivers the message over SMTP.
func (s *DefaultSender) sendEmail(address, message string) error {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		return fmt.Errorf("smtp is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.SMTPFrom)
	m.SetHeader("To", address)
	m.SetHeader("Subject", "Your Tillpoint sign-in code")
	m.SetBody("text/plain", message)

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
