package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

var smsHTTPClient = &http.Client{Timeout: 10 * time.Second}

// SendSMS delivers a text message through the configured HTTP gateway.
// Missing gateway config logs the message instead of failing, so OTP flows
// keep working in development.
func SendSMS(phone, message string) error {
	gatewayURL := os.Getenv("SMS_GATEWAY_URL")
	if gatewayURL == "" {
		fmt.Printf("📱 SMS (gateway not configured) to %s: %s\n", phone, message)
		return nil
	}

	params := url.Values{}
	params.Set("key", os.Getenv("SMS_GATEWAY_KEY"))
	params.Set("sender", os.Getenv("SMS_SENDER_ID"))
	params.Set("to", phone)
	params.Set("message", message)

	resp, err := smsHTTPClient.Get(gatewayURL + "?" + params.Encode())
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOTPSMS formats and sends the one-time login code
func SendOTPSMS(phone, code string, ttlMinutes int) error {
	message := fmt.Sprintf("%s is your verification code. It expires in %d minutes.", code, ttlMinutes)
	return SendSMS(phone, message)
}
