package attendance

import (
	"context"
	"fmt"

	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
	"github.com/kizunalink/kizuna-backend/internal/event"
	"github.com/kizunalink/kizuna-backend/internal/notification"
)

// Service applies the membership rules for attendance: joins only on
// scheduled events, idempotent join and withdraw, roster reads for the
// host.
type Service struct {
	Repo     Repository
	Events   event.Repository
	AuditSvc auditlog.Service
	NotifSvc notification.Service
}

func NewService(repo Repository, events event.Repository, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:     repo,
		Events:   events,
		AuditSvc: auditSvc,
	}
}

// ===========================
// Request Attendance
//
// Returns ErrAlreadyAttending when a row already exists; callers treat
// that as an idempotent success (it maps to 200, not an error page).
func (s *Service) RequestAttendance(ctx context.Context, identity auth.Identity, eventID uint, req *JoinRequest, ip string) (*Attendance, error) {
	ev, err := s.Events.FetchByID(eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status == event.StatusCancelled {
		return nil, domain.ErrEventCancelled
	}

	attendance := &Attendance{
		EventID:            ev.ID,
		UserID:             identity.UserID,
		Greeting:           req.Greeting,
		AfterPartyInterest: req.AfterPartyInterest,
	}

	created, err := s.Repo.InsertIfAbsent(ctx, attendance)
	if err != nil {
		s.audit(ctx, identity.UserID, &ev.ID, "ATTENDANCE_JOINED", map[string]interface{}{
			"event_id": ev.ID,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if !created {
		return nil, domain.ErrAlreadyAttending
	}

	s.audit(ctx, identity.UserID, &ev.ID, "ATTENDANCE_JOINED", map[string]interface{}{
		"event_id":             ev.ID,
		"after_party_interest": req.AfterPartyInterest,
	}, ip, "success")

	if s.NotifSvc != nil {
		s.NotifSvc.NotifyNewAttendance(ctx, ev.ID, ev.Title, ev.HostID, identity.FullName)
	}

	return attendance, nil
}

// ===========================
// Withdraw Attendance
//
// A withdraw on an absent pair is a no-op success; it also commutes with
// a racing cancellation.
func (s *Service) WithdrawAttendance(ctx context.Context, identity auth.Identity, eventID uint, ip string) error {
	if _, err := s.Events.FetchByID(eventID); err != nil {
		return err
	}

	deleted, err := s.Repo.DeleteIfPresent(ctx, eventID, identity.UserID)
	if err != nil {
		s.audit(ctx, identity.UserID, &eventID, "ATTENDANCE_WITHDRAWN", map[string]interface{}{
			"event_id": eventID,
			"error":    err.Error(),
		}, ip, "failure")
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	if deleted {
		s.audit(ctx, identity.UserID, &eventID, "ATTENDANCE_WITHDRAWN", map[string]interface{}{
			"event_id": eventID,
		}, ip, "success")
	}

	return nil
}

// ===========================
// Roster (host only)
func (s *Service) Roster(ctx context.Context, identity auth.Identity, eventID uint) ([]RosterEntry, error) {
	ev, err := s.Events.FetchByID(eventID)
	if err != nil {
		return nil, err
	}
	if ev.HostID != identity.UserID {
		return nil, domain.ErrForbidden
	}

	entries, err := s.Repo.ListForEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return entries, nil
}

func (s *Service) audit(ctx context.Context, userID uint, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	uid := userID
	_ = s.AuditSvc.LogAction(ctx, &uid, eventID, action, details, ip, status)
}
