package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	FirebaseApp    *firebase.App
	FirebaseClient *messaging.Client
	once           sync.Once
	initErr        error
	isInitialized  bool
)

// InitFirebase initializes Firebase Admin SDK and FCM client (singleton pattern)
func InitFirebase() error {
	if isInitialized {
		return initErr
	}

	once.Do(func() {
		ctx := context.Background()

		credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if credentialsPath == "" {
			credentialsPath = os.Getenv("FCM_CREDENTIALS_PATH")
		}
		if credentialsPath == "" {
			credentialsPath = "./serviceAccountKey.json"
		}

		projectID := os.Getenv("FIREBASE_PROJECT_ID")
		if projectID == "" {
			projectID = os.Getenv("FCM_PROJECT_ID")
		}

		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Printf("⚠️ Firebase credentials file not found at: %s", credentialsPath)
			isInitialized = true
			initErr = fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
			return
		}

		if projectID == "" {
			isInitialized = true
			initErr = fmt.Errorf("FIREBASE_PROJECT_ID is required for FCM")
			return
		}

		opt := option.WithCredentialsFile(credentialsPath)
		conf := &firebase.Config{ProjectID: projectID}

		app, err := firebase.NewApp(ctx, conf, opt)
		if err != nil {
			isInitialized = true
			initErr = fmt.Errorf("failed to initialize firebase app: %w", err)
			return
		}

		client, err := app.Messaging(ctx)
		if err != nil {
			isInitialized = true
			initErr = fmt.Errorf("failed to get FCM client: %w", err)
			return
		}

		FirebaseApp = app
		FirebaseClient = client
		isInitialized = true
		log.Printf("✅ Firebase initialized for project: %s", projectID)
	})

	return initErr
}

// IsFCMEnabled reports whether push notifications can be sent
func IsFCMEnabled() bool {
	return FirebaseClient != nil
}

// GetInitError returns the initialization failure, if any
func GetInitError() error {
	return initErr
}

// SendPushNotification delivers a push message to a set of device tokens
func SendPushNotification(tokens []string, title, body string, data map[string]string) error {
	if FirebaseClient == nil {
		return fmt.Errorf("FCM client not initialized")
	}
	if len(tokens) == 0 {
		return nil
	}

	ctx := context.Background()
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	resp, err := FirebaseClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("FCM send failed: %w", err)
	}

	if resp.FailureCount > 0 {
		log.Printf("⚠️ FCM: %d of %d messages failed", resp.FailureCount, len(tokens))
	}

	return nil
}
