package guest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nomenalista/guestlist-backend/config"
	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
	"github.com/nomenalista/guestlist-backend/internal/confirmation"
	"github.com/nomenalista/guestlist-backend/internal/event"
	"github.com/nomenalista/guestlist-backend/utils"
)

// Service wraps business logic for guest list operations
type Service struct {
	Repo     *event.Repository
	AuditSvc auditlog.Service
	Producer *utils.KafkaProducer
	Cfg      *config.Config
}

func NewService(r *event.Repository, auditSvc auditlog.Service, producer *utils.KafkaProducer, cfg *config.Config) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc, Producer: producer, Cfg: cfg}
}

// visibleTo reports whether the acting permission set may operate on this
// particular guest. Full visibility sees everyone; a promoter without it is
// scoped to the guests their own record added. Out-of-scope guests read as
// not found, not forbidden, so their existence does not leak.
func visibleTo(g *event.Guest, perms event.PermissionSet) bool {
	if perms.CanViewAllGuests {
		return true
	}
	if perms.IsPromoter && perms.Promoter != nil {
		return g.AddedBy.Kind == event.RefPromoter && g.AddedBy.ID == perms.Promoter.ID
	}
	return false
}

// ===========================
// Add Guest
func (s *Service) AddGuest(ctx context.Context, actor *auth.User, eventID string, req *AddGuestRequest, ip string) (*event.Guest, error) {
	listType := req.ListType
	if listType == "" {
		listType = event.ListNormal
	}

	var added event.Guest
	var notifyOwner string
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		perms := event.ResolvePermissions(actor, ev)
		if !perms.CanAddGuests {
			return nil, event.ErrPermissionDenied
		}

		addedBy := event.AddedBy{Kind: event.RefOwner, ID: actor.ID}
		promoterID := ""
		if perms.IsPromoter {
			p := perms.Promoter
			if p.GuestQuota != nil && p.GuestsAdded >= *p.GuestQuota {
				return nil, event.ErrQuotaExceeded
			}
			addedBy = event.AddedBy{Kind: event.RefPromoter, ID: p.ID}
			promoterID = p.ID
		}

		added = event.Guest{
			ID:                uuid.NewString(),
			Name:              req.Name,
			Phone:             req.Phone,
			Email:             req.Email,
			ListType:          listType,
			Timestamp:         time.Now(),
			AddedBy:           addedBy,
			PromoterID:        promoterID,
			ConfirmationToken: confirmation.UniqueToken(events),
			ConfirmationCode:  confirmation.UniqueCode(events),
		}

		ev.Guests = append(ev.Guests, added)
		ev.AdjustGuestsAdded(promoterID, 1)
		if perms.IsPromoter {
			notifyOwner = ev.OwnerID
		}
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_ADDED", map[string]interface{}{
			"name":  req.Name,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_ADDED", map[string]interface{}{
		"guest_id":  added.ID,
		"name":      added.Name,
		"list_type": added.ListType,
	}, ip, "success")

	if notifyOwner != "" {
		s.Producer.Publish(ctx, utils.NotificationMessage{
			RecipientID: notifyOwner,
			EventID:     eventID,
			Title:       "Guest added",
			Message:     fmt.Sprintf("%s added %s to the guest list", actor.Name, added.Name),
			Category:    "guest",
		})
	}
	return &added, nil
}

// ===========================
// List Guests
func (s *Service) ListGuests(ctx context.Context, actor *auth.User, eventID string) ([]event.Guest, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	perms := event.ResolvePermissions(actor, ev)
	if !perms.IsOwner && !perms.IsPromoter {
		return nil, event.ErrPermissionDenied
	}
	return event.VisibleGuests(ev, perms), nil
}

// ===========================
// Update Guest
func (s *Service) UpdateGuest(ctx context.Context, actor *auth.User, eventID, guestID string, req *UpdateGuestRequest, ip string) (*event.Guest, error) {
	var updated event.Guest
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		perms := event.ResolvePermissions(actor, ev)
		if !perms.CanEditGuests {
			return nil, event.ErrPermissionDenied
		}

		idx := ev.GuestByID(guestID)
		if idx < 0 || !visibleTo(&ev.Guests[idx], perms) {
			return nil, event.ErrGuestNotFound
		}

		g := &ev.Guests[idx]
		if req.Name != nil {
			g.Name = *req.Name
		}
		if req.Phone != nil {
			g.Phone = *req.Phone
		}
		if req.Email != nil {
			g.Email = *req.Email
		}
		if req.ListType != nil {
			g.ListType = *req.ListType
		}
		updated = *g
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_UPDATED", map[string]interface{}{
			"guest_id": guestID,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_UPDATED", map[string]interface{}{
		"guest_id": guestID,
	}, ip, "success")
	return &updated, nil
}

// ===========================
// Delete Guest
func (s *Service) DeleteGuest(ctx context.Context, actor *auth.User, eventID, guestID string, ip string) error {
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		perms := event.ResolvePermissions(actor, ev)
		if !perms.CanDeleteGuests {
			return nil, event.ErrPermissionDenied
		}

		idx := ev.GuestByID(guestID)
		if idx < 0 || !visibleTo(&ev.Guests[idx], perms) {
			return nil, event.ErrGuestNotFound
		}

		promoterID := ev.Guests[idx].PromoterID
		ev.Guests = append(ev.Guests[:idx], ev.Guests[idx+1:]...)
		ev.AdjustGuestsAdded(promoterID, -1)
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_DELETED", map[string]interface{}{
			"guest_id": guestID,
			"error":    err.Error(),
		}, ip, "failure")
		return err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_DELETED", map[string]interface{}{
		"guest_id": guestID,
	}, ip, "success")
	return nil
}

// ===========================
// Confirm Guest (organizer side)
//
// Idempotent: confirming a confirmed guest changes nothing and is not an
// error.
func (s *Service) ConfirmGuest(ctx context.Context, actor *auth.User, eventID, guestID string, ip string) (*event.Guest, error) {
	var confirmed event.Guest
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		perms := event.ResolvePermissions(actor, ev)
		if !perms.CanConfirmGuests {
			return nil, event.ErrPermissionDenied
		}

		idx := ev.GuestByID(guestID)
		if idx < 0 || !visibleTo(&ev.Guests[idx], perms) {
			return nil, event.ErrGuestNotFound
		}

		g := &ev.Guests[idx]
		if !g.Confirmed {
			now := time.Now()
			g.Confirmed = true
			g.ConfirmedAt = &now
		}
		confirmed = *g
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_CONFIRMED", map[string]interface{}{
		"guest_id": guestID,
		"via":      "organizer",
	}, ip, "success")
	return &confirmed, nil
}

// ===========================
// Check In Guest
func (s *Service) CheckInGuest(ctx context.Context, actor *auth.User, eventID, guestID string, ip string) (*event.Guest, error) {
	var checked event.Guest
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		perms := event.ResolvePermissions(actor, ev)
		if !perms.CanCheckInGuests {
			return nil, event.ErrPermissionDenied
		}
		if !ev.Settings.EnableCheckIn {
			return nil, event.ErrCheckInDisabled
		}

		idx := ev.GuestByID(guestID)
		if idx < 0 || !visibleTo(&ev.Guests[idx], perms) {
			return nil, event.ErrGuestNotFound
		}

		ev.Guests[idx].CheckedIn = true
		checked = ev.Guests[idx]
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "GUEST_CHECKED_IN", map[string]interface{}{
		"guest_id": guestID,
	}, ip, "success")
	return &checked, nil
}

// ===========================
// Confirmation Link
func (s *Service) ConfirmationLink(ctx context.Context, actor *auth.User, eventID, guestID string) (*ConfirmationLink, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	perms := event.ResolvePermissions(actor, ev)
	if !perms.IsOwner && !perms.IsPromoter {
		return nil, event.ErrPermissionDenied
	}

	idx := ev.GuestByID(guestID)
	if idx < 0 || !visibleTo(&ev.Guests[idx], perms) {
		return nil, event.ErrGuestNotFound
	}

	g := &ev.Guests[idx]
	return &ConfirmationLink{
		GuestID:    g.ID,
		ConfirmURL: fmt.Sprintf("%s/public/confirm/%s", s.Cfg.BaseURL, g.ConfirmationToken),
		DeclineURL: fmt.Sprintf("%s/public/decline/%s", s.Cfg.BaseURL, g.ConfirmationToken),
		Code:       g.ConfirmationCode,
	}, nil
}

// ===========================
// Quota
func (s *Service) Quota(ctx context.Context, actor *auth.User, eventID string) (*QuotaStatus, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	perms := event.ResolvePermissions(actor, ev)
	if !perms.IsPromoter || perms.Promoter == nil {
		return nil, event.ErrPromoterNotFound
	}

	return quotaOf(perms.Promoter), nil
}

// ===========================
// Promoter Stats
//
// Owners (and anyone with full visibility) get a row per promoter; a
// promoter without full visibility gets only their own row.
func (s *Service) Stats(ctx context.Context, actor *auth.User, eventID string) ([]PromoterStats, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	perms := event.ResolvePermissions(actor, ev)
	switch {
	case perms.CanViewAllGuests:
		stats := []PromoterStats{}
		for i := range ev.Promoters {
			stats = append(stats, statsFor(ev, &ev.Promoters[i]))
		}
		return stats, nil
	case perms.IsPromoter && perms.Promoter != nil:
		return []PromoterStats{statsFor(ev, perms.Promoter)}, nil
	default:
		return nil, event.ErrPermissionDenied
	}
}

// StatsForPromoter returns one promoter's row. Full visibility may look at
// anyone; a promoter may look at themselves.
func (s *Service) StatsForPromoter(ctx context.Context, actor *auth.User, eventID, promoterID string) (*PromoterStats, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	p := ev.PromoterByID(promoterID)
	if p == nil {
		return nil, event.ErrPromoterNotFound
	}

	perms := event.ResolvePermissions(actor, ev)
	if !perms.CanViewAllGuests && !(perms.IsPromoter && perms.Promoter != nil && perms.Promoter.ID == promoterID) {
		return nil, event.ErrPermissionDenied
	}

	st := statsFor(ev, p)
	return &st, nil
}

func statsFor(ev *event.Event, p *event.Promoter) PromoterStats {
	st := PromoterStats{
		PromoterID:   p.ID,
		PromoterName: p.Name,
		Quota:        *quotaOf(p),
	}
	for i := range ev.Guests {
		g := &ev.Guests[i]
		if g.AddedBy.Kind != event.RefPromoter || g.AddedBy.ID != p.ID {
			continue
		}
		st.Total++
		if g.Confirmed {
			st.Confirmed++
		}
		if g.CheckedIn {
			st.CheckedIn++
		}
	}
	return st
}

// quotaOf projects the quota as stored: remaining is the raw difference and
// may be negative when the counter over-ran the quota through a race.
// Callers treat remaining <= 0 as deny, so drift stays visible instead of
// being rounded away.
func quotaOf(p *event.Promoter) *QuotaStatus {
	st := &QuotaStatus{Quota: p.GuestQuota, Used: p.GuestsAdded}
	if p.GuestQuota != nil {
		remaining := *p.GuestQuota - p.GuestsAdded
		st.Remaining = &remaining
	}
	return st
}

func eventIn(events []event.Event, id string) *event.Event {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}
