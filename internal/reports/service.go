package reports

import (
	"context"

	"github.com/kizunalink/kizuna-backend/internal/attendance"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/event"
)

// Service produces host-facing roster exports. Authorization is the
// attendance service's host check; this layer only renders.
type Service interface {
	ExportRoster(ctx context.Context, identity auth.Identity, eventID uint, format, ip string) ([]byte, string, string, error)
}

type service struct {
	attendanceSvc *attendance.Service
	events        event.Repository
	exporter      RosterExporter
	auditSvc      auditlog.Service
}

func NewService(attendanceSvc *attendance.Service, events event.Repository, auditSvc auditlog.Service) Service {
	return &service{
		attendanceSvc: attendanceSvc,
		events:        events,
		exporter:      NewRosterExporter(),
		auditSvc:      auditSvc,
	}
}

func (s *service) ExportRoster(ctx context.Context, identity auth.Identity, eventID uint, format, ip string) ([]byte, string, string, error) {
	entries, err := s.attendanceSvc.Roster(ctx, identity, eventID)
	if err != nil {
		return nil, "", "", err
	}

	ev, err := s.events.FetchByID(eventID)
	if err != nil {
		return nil, "", "", err
	}

	payload, filename, mime, err := s.exporter.Export(format, ev, entries)

	status := "success"
	details := map[string]interface{}{
		"event_id": eventID,
		"format":   format,
		"rows":     len(entries),
	}
	if err != nil {
		status = "failure"
		details["error"] = err.Error()
	}
	uid := identity.UserID
	_ = s.auditSvc.LogAction(ctx, &uid, &eventID, "ROSTER_EXPORTED", details, ip, status)

	return payload, filename, mime, err
}
