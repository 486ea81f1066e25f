package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"gorm.io/datatypes"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/utils"
)

// Service is the notification dispatcher. The Notify* methods are
// fire-and-forget: they queue work and return immediately, and delivery
// failures are logged and swallowed, never surfaced to the caller.
type Service interface {
	NotifyCityEvent(ctx context.Context, eventID, hostID uint, city, title string, startsAt time.Time)
	NotifyEventCancelled(ctx context.Context, eventID uint, title string, attendeeIDs []uint)
	NotifyNewAttendance(ctx context.Context, eventID uint, title string, hostID uint, attendeeName string)

	ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id, userID uint) error

	RegisterDeviceToken(ctx context.Context, userID uint, deviceToken, deviceType, deviceName string) error
	RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error

	StartKafkaConsumer(ctx context.Context)
}

type service struct {
	repo     Repository
	authRepo auth.Repository
	auditSvc auditlog.Service
	email    Channel
	push     Channel
	writer   *kafka.Writer
	reader   *kafka.Reader
}

func NewService(repo Repository, authRepo auth.Repository, cfg *config.Config, auditSvc auditlog.Service) Service {
	return &service{
		repo:     repo,
		authRepo: authRepo,
		auditSvc: auditSvc,
		email:    NewEmailSender(cfg),
		push:     NewFCMChannel(),
		writer:   utils.NewKafkaWriter(cfg),
		reader:   utils.NewKafkaReader(cfg),
	}
}

// ===========================
// Fire-and-forget triggers
// ===========================

func (s *service) NotifyCityEvent(ctx context.Context, eventID, hostID uint, city, title string, startsAt time.Time) {
	s.enqueue(Envelope{
		Kind:     KindCityEvent,
		EventID:  eventID,
		HostID:   hostID,
		City:     city,
		Title:    title,
		StartsAt: startsAt,
	})
}

func (s *service) NotifyEventCancelled(ctx context.Context, eventID uint, title string, attendeeIDs []uint) {
	s.enqueue(Envelope{
		Kind:        KindEventCancelled,
		EventID:     eventID,
		Title:       title,
		AttendeeIDs: attendeeIDs,
	})
}

func (s *service) NotifyNewAttendance(ctx context.Context, eventID uint, title string, hostID uint, attendeeName string) {
	s.enqueue(Envelope{
		Kind:         KindNewAttendance,
		EventID:      eventID,
		HostID:       hostID,
		Title:        title,
		AttendeeName: attendeeName,
	})
}

// ===========================
// Delivery
// ===========================

// deliver fans one envelope out to email, in-app, and push. Every error
// path logs and moves on; there is nothing upstream left to fail.
func (s *service) deliver(ctx context.Context, env Envelope) {
	switch env.Kind {
	case KindCityEvent:
		s.deliverCityEvent(ctx, env)
	case KindEventCancelled:
		s.deliverEventCancelled(ctx, env)
	case KindNewAttendance:
		s.deliverNewAttendance(ctx, env)
	default:
		log.Printf("notification deliver: unknown kind %q", env.Kind)
	}
}

func (s *service) deliverCityEvent(ctx context.Context, env Envelope) {
	subscribers, err := s.authRepo.GetCitySubscribers(env.City, env.HostID)
	if err != nil {
		log.Printf("notification deliver: city subscribers lookup failed: %v", err)
		return
	}
	if len(subscribers) == 0 {
		return
	}

	emails := make([]string, 0, len(subscribers))
	userIDs := make([]uint, 0, len(subscribers))
	for _, u := range subscribers {
		emails = append(emails, u.Email)
		userIDs = append(userIDs, u.ID)
	}

	subject := fmt.Sprintf("New event in %s: %s", env.City, env.Title)
	body := fmt.Sprintf("%s is happening in %s on %s. Check it out and reserve your spot.",
		env.Title, env.City, env.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST"))

	s.sendEmails(ctx, &env.EventID, emails, subject, body)
	s.createInAppBatch(ctx, userIDs, &env.EventID, subject, body, "event")
	s.sendPush(ctx, &env.EventID, userIDs, subject, body)
}

func (s *service) deliverEventCancelled(ctx context.Context, env Envelope) {
	if len(env.AttendeeIDs) == 0 {
		return
	}

	subject := fmt.Sprintf("Event cancelled: %s", env.Title)
	body := fmt.Sprintf("The host has cancelled %q. Your reservation is no longer needed.", env.Title)

	emails, err := s.authRepo.GetEmailsByUserIDs(env.AttendeeIDs)
	if err != nil {
		log.Printf("notification deliver: attendee email lookup failed: %v", err)
	} else {
		s.sendEmails(ctx, &env.EventID, emails, subject, body)
	}

	s.createInAppBatch(ctx, env.AttendeeIDs, &env.EventID, subject, body, "event")
	s.sendPush(ctx, &env.EventID, env.AttendeeIDs, subject, body)
}

func (s *service) deliverNewAttendance(ctx context.Context, env Envelope) {
	subject := "New attendee"
	body := fmt.Sprintf("%s is joining %q.", env.AttendeeName, env.Title)

	eventID := env.EventID
	n := &InAppNotification{
		UserID:   env.HostID,
		EventID:  &eventID,
		Title:    subject,
		Message:  body,
		Category: "attendance",
	}
	if err := s.repo.CreateInApp(ctx, n); err != nil {
		log.Printf("notification in-app failed: %v", err)
	}
	s.sendPush(ctx, &env.EventID, []uint{env.HostID}, subject, body)
}

// sendEmails delivers in batches and records one log row for the whole
// send. Partial failures are recorded but not retried.
func (s *service) sendEmails(ctx context.Context, eventID *uint, recipients []string, subject, body string) {
	if len(recipients) == 0 {
		return
	}

	logRow := s.newLogRow(ctx, eventID, "email", subject, body, recipients)

	const batchSize = 50
	var lastErr error
	for i := 0; i < len(recipients); i += batchSize {
		end := i + batchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		if err := s.email.Send(recipients[i:end], subject, body); err != nil {
			log.Printf("notification email batch failed: %v", err)
			lastErr = err
		}
		if end < len(recipients) {
			time.Sleep(200 * time.Millisecond)
		}
	}

	s.finishLogRow(ctx, logRow, lastErr)
}

func (s *service) sendPush(ctx context.Context, eventID *uint, userIDs []uint, title, body string) {
	if !utils.IsFCMEnabled() {
		return
	}

	tokens, err := s.repo.ActiveTokensForUsers(ctx, userIDs)
	if err != nil {
		log.Printf("notification push: token lookup failed: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	logRow := s.newLogRow(ctx, eventID, "push", title, body, tokens)
	err = s.push.Send(tokens, title, body)
	if err != nil {
		log.Printf("notification push failed: %v", err)
	}
	s.finishLogRow(ctx, logRow, err)
}

func (s *service) createInAppBatch(ctx context.Context, userIDs []uint, eventID *uint, title, message, category string) {
	ns := make([]InAppNotification, 0, len(userIDs))
	for _, uid := range userIDs {
		ns = append(ns, InAppNotification{
			UserID:   uid,
			EventID:  eventID,
			Title:    title,
			Message:  message,
			Category: category,
		})
	}
	if err := s.repo.CreateInAppBatch(ctx, ns); err != nil {
		log.Printf("notification in-app batch failed: %v", err)
	}
}

func (s *service) newLogRow(ctx context.Context, eventID *uint, channel, subject, body string, recipients []string) *NotificationLog {
	recipientsJSON, _ := json.Marshal(recipients)
	row := &NotificationLog{
		EventID:    eventID,
		Channel:    channel,
		Subject:    subject,
		Body:       body,
		Recipients: datatypes.JSON(recipientsJSON),
		Status:     "pending",
	}
	if err := s.repo.CreateNotificationLog(ctx, row); err != nil {
		log.Printf("notification log create failed: %v", err)
	}
	return row
}

func (s *service) finishLogRow(ctx context.Context, row *NotificationLog, sendErr error) {
	if sendErr != nil {
		msg := sendErr.Error()
		row.Status = "failed"
		row.Error = &msg
	} else {
		row.Status = "sent"
	}
	if err := s.repo.UpdateNotificationLog(ctx, row); err != nil {
		log.Printf("notification log update failed: %v", err)
	}
}

// ===========================
// In-app and device tokens
// ===========================

func (s *service) ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error) {
	return s.repo.ListInAppByUser(ctx, userID, limit)
}

func (s *service) MarkInAppAsRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkInAppRead(ctx, id, userID)
}

func (s *service) RegisterDeviceToken(ctx context.Context, userID uint, deviceToken, deviceType, deviceName string) error {
	if deviceToken == "" {
		return fmt.Errorf("device token is required")
	}
	return s.repo.UpsertDeviceToken(ctx, &FCMDeviceToken{
		UserID:      userID,
		DeviceToken: deviceToken,
		DeviceType:  deviceType,
		DeviceName:  deviceName,
	})
}

func (s *service) RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return s.repo.DeactivateDeviceToken(ctx, userID, deviceToken)
}
