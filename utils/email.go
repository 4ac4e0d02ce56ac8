package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"sync"
)

// ======================
// SMTP Configuration
// ======================
var (
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	smtpUsername  = os.Getenv("SMTP_USERNAME")
	smtpPassword  = os.Getenv("SMTP_PASSWORD")
	smtpFromName  = os.Getenv("SMTP_FROM_NAME")
	smtpFromEmail = os.Getenv("SMTP_FROM_EMAIL")
	frontendURL   = os.Getenv("FRONTEND_URL")
)

// sendEmail dials SMTP, upgrades to TLS and sends a plain-text message
func sendEmail(to, subject, body string) error {
	if smtpHost == "" || smtpUsername == "" || smtpPassword == "" {
		fmt.Println("⚠️ SMTP not configured. Email not sent.")
		return nil
	}

	if smtpFromEmail == "" {
		smtpFromEmail = smtpUsername
	}

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	// Dial first, then StartTLS on the same connection
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         smtpHost,
	}

	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(smtpFromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	from := smtpFromName
	if from == "" {
		from = smtpFromEmail
	} else {
		from = fmt.Sprintf("%s <%s>", smtpFromName, smtpFromEmail)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", from, to, subject, body))

	if _, err = w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		fmt.Printf("⚠️ QUIT command error (non-critical): %v\n", err)
	}

	return nil
}

// ======================
// Async bulk email sender
// ======================
func SendBulkEmailsAsync(recipients []string, subject, body string) {
	go func() {
		var wg sync.WaitGroup
		for _, email := range recipients {
			wg.Add(1)
			go func(to string) {
				defer wg.Done()
				if err := sendEmail(to, subject, body); err != nil {
					fmt.Printf("❌ Failed to send email to %s: %v\n", to, err)
				}
			}(email)
		}
		wg.Wait()
	}()
}

// ======================
// Password Reset
// ======================
func SendResetLink(toEmail string, resetToken string) error {
	baseURL := frontendURL
	if baseURL == "" {
		baseURL = "http://localhost:5173"
		fmt.Println("⚠️ FRONTEND_URL not set, using default:", baseURL)
	}

	resetURL := fmt.Sprintf("%s/auth-pages/reset-password?token=%s", baseURL, resetToken)
	subject := "Reset your password"
	body := fmt.Sprintf("Click here to reset your password: %s\n\nIf you did not request this password reset, please ignore this email.", resetURL)

	return sendEmail(toEmail, subject, body)
}

// ======================
// Application Emails
// ======================
func SendApplicationApprovalEmail(toEmail, fullName, schemeName string) {
	subject := fmt.Sprintf("Your application under \"%s\" has been approved", schemeName)
	body := fmt.Sprintf("Hello %s, your aid application under the scheme \"%s\" has been approved. Your payment schedule will be shared shortly.", fullName, schemeName)
	_ = sendEmail(toEmail, subject, body)
}

func SendApplicationRejectionEmail(toEmail, fullName, schemeName, reason string) {
	subject := fmt.Sprintf("Your application under \"%s\" was rejected", schemeName)
	body := fmt.Sprintf("Hello %s, your aid application under the scheme \"%s\" was rejected.\nReason: %s", fullName, schemeName, reason)
	_ = sendEmail(toEmail, subject, body)
}

func SendInterviewScheduledEmail(toEmail, fullName, schemeName, when string) {
	subject := "Interview scheduled for your application"
	body := fmt.Sprintf("Hello %s, an interview has been scheduled for your application under \"%s\" on %s. Please be available.", fullName, schemeName, when)
	_ = sendEmail(toEmail, subject, body)
}

// ======================
// Admin User Emails
// ======================
func SendAdminCredentialsEmail(toEmail, fullName, role, password string) error {
	subject := "Your admin account has been created"
	body := fmt.Sprintf("Hello %s, an account with role %s has been created for you.\n\nTemporary password: %s\n\nPlease change it after logging in.", fullName, role, password)
	return sendEmail(toEmail, subject, body)
}

func SendPasswordResetNotification(toEmail, userName, adminName, newPassword string) error {
	subject := "Your password has been reset"
	body := fmt.Sprintf("Hello %s, your password has been reset by %s.\n\nNew password: %s\n\nPlease change it after logging in.", userName, adminName, newPassword)
	return sendEmail(toEmail, subject, body)
}
