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
	firebaseApp *firebase.App
	fcmClient   *messaging.Client
	fcmOnce     sync.Once
	fcmInitErr  error
)

// InitFirebase initializes the Firebase Admin SDK and the FCM client once.
// Push notifications are optional: a missing credentials file disables FCM
// without failing startup.
func InitFirebase(credentialsPath, projectID string) error {
	fcmOnce.Do(func() {
		ctx := context.Background()

		if credentialsPath == "" {
			credentialsPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		}
		if credentialsPath == "" {
			log.Println("FCM credentials not configured, push notifications disabled")
			fcmInitErr = fmt.Errorf("fcm credentials path not set")
			return
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Printf("FCM credentials file not found at %s, push notifications disabled", credentialsPath)
			fcmInitErr = fmt.Errorf("fcm credentials file not found: %s", credentialsPath)
			return
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID},
			option.WithCredentialsFile(credentialsPath))
		if err != nil {
			fcmInitErr = fmt.Errorf("initializing firebase app: %w", err)
			return
		}

		client, err := app.Messaging(ctx)
		if err != nil {
			fcmInitErr = fmt.Errorf("creating fcm client: %w", err)
			return
		}

		firebaseApp = app
		fcmClient = client
		log.Printf("Firebase initialized (project=%s)", projectID)
	})
	return fcmInitErr
}

// FCMClient returns the messaging client, or nil when FCM is disabled.
func FCMClient() *messaging.Client {
	return fcmClient
}

// IsFCMEnabled reports whether push notifications can be sent.
func IsFCMEnabled() bool {
	return fcmClient != nil
}
