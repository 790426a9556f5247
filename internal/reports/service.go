package reports

import (
	"context"

	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
	"github.com/nomenalista/guestlist-backend/internal/event"
)

// Service renders guest-list exports. The export honors visibility: a
// promoter without full visibility downloads exactly the slice of the list
// they can see on screen, nothing more.
type Service struct {
	Repo     *event.Repository
	Exporter GuestListExporter
	AuditSvc auditlog.Service
}

func NewService(r *event.Repository, exporter GuestListExporter, auditSvc auditlog.Service) *Service {
	return &Service{Repo: r, Exporter: exporter, AuditSvc: auditSvc}
}

func (s *Service) ExportGuestList(ctx context.Context, actor *auth.User, eventID, format, ip string) ([]byte, string, string, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, "", "", err
	}

	perms := event.ResolvePermissions(actor, ev)
	if !perms.IsOwner && !perms.IsPromoter {
		return nil, "", "", event.ErrPermissionDenied
	}

	guests := event.VisibleGuests(ev, perms)
	data, filename, contentType, err := s.Exporter.Export(format, ev, guests)
	if err != nil {
		return nil, "", "", err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_LIST_EXPORTED", map[string]interface{}{
		"format": format,
		"count":  len(guests),
	}, ip, "success")
	return data, filename, contentType, nil
}
