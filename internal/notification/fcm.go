package notification

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"

	"github.com/kizunalink/kizuna-backend/utils"
)

// FCMChannel implements Channel for Firebase Cloud Messaging. Recipients
// are device tokens.
type FCMChannel struct {
	client *messaging.Client
}

func NewFCMChannel() Channel {
	return &FCMChannel{client: utils.GetFCMClient()}
}

func (f *FCMChannel) Send(recipients []string, subject, body string) error {
	if f.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no FCM tokens provided")
	}

	if len(recipients) == 1 {
		return f.sendSingle(recipients[0], subject, body)
	}
	return f.sendMulticast(recipients, subject, body)
}

func (f *FCMChannel) sendSingle(token, title, body string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:        "default",
				ChannelID:    "kizuna_notifications",
				Priority:     messaging.PriorityHigh,
				DefaultSound: true,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := f.client.Send(context.Background(), message); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}

func (f *FCMChannel) sendMulticast(tokens []string, title, body string) error {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "kizuna_notifications",
			},
		},
	}

	response, err := f.client.SendEachForMulticast(context.Background(), message)
	if err != nil {
		return fmt.Errorf("failed to send FCM multicast: %w", err)
	}
	if response.FailureCount > 0 {
		log.Printf("FCM multicast: %d/%d deliveries failed", response.FailureCount, len(tokens))
	}
	return nil
}
