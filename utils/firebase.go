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

	appconfig "github.com/kizunalink/kizuna-backend/config"
)

var (
	firebaseApp    *firebase.App
	firebaseClient *messaging.Client
	firebaseOnce   sync.Once
	firebaseErr    error
)

// InitFirebase initializes the Firebase Admin SDK and FCM client once.
// Missing credentials are not fatal: push notifications are simply
// disabled.
func InitFirebase(cfg *appconfig.Config) error {
	firebaseOnce.Do(func() {
		ctx := context.Background()

		credentialsPath := cfg.FCMCredentialsPath
		if credentialsPath == "" {
			log.Println("FCM credentials not configured, push notifications disabled")
			firebaseErr = fmt.Errorf("FCM_CREDENTIALS_PATH not set")
			return
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Printf("FCM credentials file not found at %s, push notifications disabled", credentialsPath)
			firebaseErr = fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
			return
		}
		if cfg.FCMProjectID == "" {
			log.Println("FCM_PROJECT_ID not set, push notifications disabled")
			firebaseErr = fmt.Errorf("FCM_PROJECT_ID is required for FCM")
			return
		}

		app, err := firebase.NewApp(ctx,
			&firebase.Config{ProjectID: cfg.FCMProjectID},
			option.WithCredentialsFile(credentialsPath),
		)
		if err != nil {
			log.Printf("Firebase app initialization failed: %v", err)
			firebaseErr = err
			return
		}

		client, err := app.Messaging(ctx)
		if err != nil {
			log.Printf("FCM client initialization failed: %v", err)
			firebaseApp = app
			firebaseErr = err
			return
		}

		log.Println("FCM initialized for project:", cfg.FCMProjectID)
		firebaseApp = app
		firebaseClient = client
	})

	return firebaseErr
}

// GetFCMClient returns the FCM client, nil when push is disabled.
func GetFCMClient() *messaging.Client {
	return firebaseClient
}

// IsFCMEnabled reports whether push notifications can be sent.
func IsFCMEnabled() bool {
	return firebaseClient != nil
}
