package event

import (
	"context"
	"fmt"
	"time"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
	"github.com/kizunalink/kizuna-backend/internal/notification"
)

// Ledger is the attendance bookkeeping the lifecycle engine consults.
// Implemented by the attendance repository; counts are always recomputed
// from live rows, never cached here.
type Ledger interface {
	CountForEvent(ctx context.Context, eventID uint) (int, error)
	ExistsFor(ctx context.Context, eventID, userID uint) (bool, error)
	LiveUserIDs(ctx context.Context, eventID uint) ([]uint, error)
	EventIDsForUser(ctx context.Context, userID uint) ([]uint, error)
}

// Service enforces the event state machine: creation by premium hosts,
// one-way cancellation by the host, and read projections gated on the
// caller's attendance.
type Service struct {
	Repo     Repository
	Ledger   Ledger
	Cfg      *config.Config
	AuditSvc auditlog.Service
	NotifSvc notification.Service
}

func NewService(r Repository, ledger Ledger, cfg *config.Config, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:     r,
		Ledger:   ledger,
		Cfg:      cfg,
		AuditSvc: auditSvc,
	}
}

// defaultDuration is applied when a create request omits the end time.
const defaultDuration = 2 * time.Hour

// ===========================
// Create Event
func (s *Service) CreateEvent(ctx context.Context, identity auth.Identity, req *CreateEventRequest, ip string) (*Event, error) {
	if !identity.Premium {
		s.audit(ctx, identity.UserID, nil, "EVENT_CREATED", map[string]interface{}{
			"title": req.Title,
			"error": "premium membership required",
		}, ip, "failure")
		return nil, domain.ErrUnauthorized
	}

	if req.Title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidArgument)
	}
	if !s.Cfg.IsAllowedCity(req.City) {
		return nil, fmt.Errorf("%w: unknown city %q", domain.ErrInvalidArgument, req.City)
	}
	if !s.Cfg.IsAllowedCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidArgument, req.Category)
	}
	switch req.Vibe {
	case "", VibeChill, VibeSerious, VibeLearning, VibeParty:
	default:
		return nil, fmt.Errorf("%w: unknown vibe %q", domain.ErrInvalidArgument, req.Vibe)
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("%w: starts_at must be RFC 3339", domain.ErrInvalidArgument)
	}

	endsAt := startsAt.Add(defaultDuration)
	if req.EndsAt != "" {
		endsAt, err = time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			return nil, fmt.Errorf("%w: ends_at must be RFC 3339", domain.ErrInvalidArgument)
		}
		if !endsAt.After(startsAt) {
			return nil, fmt.Errorf("%w: ends_at must be after starts_at", domain.ErrInvalidArgument)
		}
	}

	event := &Event{
		HostID:        identity.UserID,
		Title:         req.Title,
		Description:   req.Description,
		City:          req.City,
		Category:      req.Category,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		Vibe:          req.Vibe,
		SoloFriendly:  req.SoloFriendly,
		AfterParty:    req.AfterParty,
		LanguageLevel: req.LanguageLevel,
		JoinLink:      req.JoinLink,
		Status:        StatusScheduled,
	}

	if err := s.Repo.Insert(event); err != nil {
		s.audit(ctx, identity.UserID, nil, "EVENT_CREATED", map[string]interface{}{
			"title": req.Title,
			"error": err.Error(),
		}, ip, "failure")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	s.audit(ctx, identity.UserID, &event.ID, "EVENT_CREATED", map[string]interface{}{
		"event_id": event.ID,
		"title":    event.Title,
		"city":     event.City,
		"category": event.Category,
	}, ip, "success")

	// Best effort: a notification failure never rolls back the create.
	if s.NotifSvc != nil {
		s.NotifSvc.NotifyCityEvent(ctx, event.ID, event.HostID, event.City, event.Title, event.StartsAt)
	}

	return event, nil
}

// ===========================
// Cancel Event
//
// Only the host may cancel, the transition is one-way, and a repeat
// cancel is an idempotent no-op.
func (s *Service) CancelEvent(ctx context.Context, identity auth.Identity, eventID uint, ip string) (*Event, error) {
	event, err := s.Repo.FetchByID(eventID)
	if err != nil {
		return nil, err
	}

	if event.HostID != identity.UserID {
		s.audit(ctx, identity.UserID, &event.ID, "EVENT_CANCELLED", map[string]interface{}{
			"event_id": event.ID,
			"error":    "caller is not the host",
		}, ip, "failure")
		return nil, domain.ErrForbidden
	}

	if event.Status == StatusCancelled {
		return event, nil
	}

	// Collect live attendees before the transition; their rows become
	// inert once the event is cancelled.
	attendeeIDs, lerr := s.Ledger.LiveUserIDs(ctx, event.ID)
	if lerr != nil {
		attendeeIDs = nil
	}

	if err := s.Repo.UpdateStatus(event.ID, StatusCancelled); err != nil {
		s.audit(ctx, identity.UserID, &event.ID, "EVENT_CANCELLED", map[string]interface{}{
			"event_id": event.ID,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	event.Status = StatusCancelled

	s.audit(ctx, identity.UserID, &event.ID, "EVENT_CANCELLED", map[string]interface{}{
		"event_id":  event.ID,
		"title":     event.Title,
		"attendees": len(attendeeIDs),
	}, ip, "success")

	if s.NotifSvc != nil && len(attendeeIDs) > 0 {
		s.NotifSvc.NotifyEventCancelled(ctx, event.ID, event.Title, attendeeIDs)
	}

	return event, nil
}

// ===========================
// Get Event View
//
// requestingUser may be nil for anonymous discovery reads. The join link
// is included only for callers with a live attendance on a scheduled
// event.
func (s *Service) GetEventView(ctx context.Context, requestingUser *uint, eventID uint) (*EventView, error) {
	event, err := s.Repo.FetchByID(eventID)
	if err != nil {
		return nil, err
	}

	count, err := s.Ledger.CountForEvent(ctx, event.ID)
	if err != nil {
		count = 0
	}
	event.AttendeeCount = count

	view := &EventView{Event: *event}

	if requestingUser != nil {
		attending, aerr := s.Ledger.ExistsFor(ctx, event.ID, *requestingUser)
		if aerr == nil && attending && event.Status == StatusScheduled {
			view.Attending = true
			if event.JoinLink != "" {
				link := event.JoinLink
				view.JoinLink = &link
			}
		}
		if event.HostID == *requestingUser {
			view.IsHost = true
			view.CanCancel = event.Status == StatusScheduled
		}
	}

	return view, nil
}

// ===========================
// List Events (discovery)
func (s *Service) ListEvents(ctx context.Context, filter ListFilter) ([]Event, error) {
	filter.IncludeCancelled = false
	events, err := s.Repo.FetchByFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	s.attachCounts(ctx, events)
	return events, nil
}

// ===========================
// My Schedule: events the user attends plus events they host, cancelled
// included so attendees retain history.
func (s *Service) MySchedule(ctx context.Context, userID uint) ([]Event, error) {
	ids, err := s.Ledger.EventIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	attending, err := s.Repo.FetchByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	hosted, err := s.Repo.FetchByHost(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	seen := make(map[uint]bool, len(attending))
	events := attending
	for i := range attending {
		seen[attending[i].ID] = true
	}
	for i := range hosted {
		if !seen[hosted[i].ID] {
			events = append(events, hosted[i])
		}
	}

	s.attachCounts(ctx, events)
	return events, nil
}

// ===========================
// Set Cover Image
//
// The upload itself happens in the handler; a storage failure there
// aborts only the attachment, never the event.
func (s *Service) SetCoverImage(ctx context.Context, identity auth.Identity, eventID uint, url string, ip string) error {
	event, err := s.Repo.FetchByID(eventID)
	if err != nil {
		return err
	}
	if event.HostID != identity.UserID {
		return domain.ErrForbidden
	}
	if event.Status == StatusCancelled {
		return domain.ErrEventCancelled
	}

	if err := s.Repo.UpdateCoverImage(event.ID, url); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	s.audit(ctx, identity.UserID, &event.ID, "EVENT_COVER_UPDATED", map[string]interface{}{
		"event_id": event.ID,
		"url":      url,
	}, ip, "success")

	return nil
}

func (s *Service) attachCounts(ctx context.Context, events []Event) {
	for i := range events {
		count, err := s.Ledger.CountForEvent(ctx, events[i].ID)
		if err != nil {
			continue
		}
		events[i].AttendeeCount = count
	}
}

func (s *Service) audit(ctx context.Context, userID uint, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	uid := userID
	_ = s.AuditSvc.LogAction(ctx, &uid, eventID, action, details, ip, status)
}
