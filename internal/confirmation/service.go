package confirmation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nomenalista/guestlist-backend/config"
	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/event"
	"github.com/nomenalista/guestlist-backend/utils"
)

// Service handles the guest-facing side of the list: anonymous lookup,
// confirmation, decline, and open registration. Nothing here requires a
// session; a valid token or code is the credential.
type Service struct {
	Repo     *event.Repository
	AuditSvc auditlog.Service
	Producer *utils.KafkaProducer
	Cfg      *config.Config
}

func NewService(r *event.Repository, auditSvc auditlog.Service, producer *utils.KafkaProducer, cfg *config.Config) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc, Producer: producer, Cfg: cfg}
}

// GuestView is what an anonymous guest sees about their own invitation.
type GuestView struct {
	GuestName     string `json:"guest_name"`
	EventName     string `json:"event_name"`
	EventDate     string `json:"event_date"`
	EventLocation string `json:"event_location"`
	Confirmed     bool   `json:"confirmed"`
}

type ConfirmResult struct {
	Status    string `json:"status"` // confirmed, already_confirmed
	GuestName string `json:"guest_name"`
	EventName string `json:"event_name"`
}

// EventCard is the public face of an event behind its RSVP link.
type EventCard struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
	Full     bool   `json:"full"`
}

type RegisterRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
}

type RegisterResult struct {
	GuestID    string `json:"guest_id"`
	ConfirmURL string `json:"confirm_url"`
	DeclineURL string `json:"decline_url"`
	Code       string `json:"code"`
}

// findByRef locates a guest by confirmation token or short code. A ref is
// tried as a token first; codes are normalized before comparison so case
// and stray whitespace never matter.
func findByRef(events []event.Event, ref string) (evIdx, guestIdx int) {
	code := NormalizeCode(ref)
	for i := range events {
		for j := range events[i].Guests {
			g := &events[i].Guests[j]
			if g.ConfirmationToken == ref || g.ConfirmationCode == code {
				return i, j
			}
		}
	}
	return -1, -1
}

// ===========================
// Lookup
func (s *Service) Lookup(ctx context.Context, ref string) (*GuestView, error) {
	events, err := s.Repo.Events(ctx)
	if err != nil {
		return nil, err
	}

	i, j := findByRef(events, ref)
	if i < 0 {
		return nil, event.ErrGuestNotFound
	}

	ev, g := &events[i], &events[i].Guests[j]
	return &GuestView{
		GuestName:     g.Name,
		EventName:     ev.Name,
		EventDate:     ev.Date,
		EventLocation: ev.Location,
		Confirmed:     g.Confirmed,
	}, nil
}

// ===========================
// Confirm
//
// Idempotent: a second confirmation reports already_confirmed and changes
// nothing, so a re-clicked link never errors at the guest.
func (s *Service) Confirm(ctx context.Context, ref string, ip string) (*ConfirmResult, error) {
	var result ConfirmResult
	var notify *utils.NotificationMessage
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		i, j := findByRef(events, ref)
		if i < 0 {
			return nil, event.ErrGuestNotFound
		}

		ev, g := &events[i], &events[i].Guests[j]
		result = ConfirmResult{GuestName: g.Name, EventName: ev.Name}
		if g.Confirmed {
			result.Status = "already_confirmed"
			return events, nil
		}

		now := time.Now()
		g.Confirmed = true
		g.ConfirmedAt = &now
		result.Status = "confirmed"

		notify = &utils.NotificationMessage{
			RecipientID: recipientFor(ev, g),
			EventID:     ev.ID,
			Title:       "Guest confirmed",
			Message:     fmt.Sprintf("%s confirmed for %s", g.Name, ev.Name),
			Category:    "guest",
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	if notify != nil {
		s.AuditSvc.LogAction(ctx, nil, nil, "GUEST_CONFIRMED", map[string]interface{}{
			"guest_name": result.GuestName,
			"via":        "public_link",
		}, ip, "success")
		s.Producer.Publish(ctx, *notify)
	}
	return &result, nil
}

// ===========================
// Decline
//
// Destructive: the guest row is removed, freeing the spot and the
// promoter's quota. Whether a confirmed guest may still withdraw this way
// is a deployment decision.
func (s *Service) Decline(ctx context.Context, ref string, ip string) (*ConfirmResult, error) {
	var result ConfirmResult
	var notify *utils.NotificationMessage
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		i, j := findByRef(events, ref)
		if i < 0 {
			return nil, event.ErrGuestNotFound
		}

		ev := &events[i]
		g := ev.Guests[j]
		if g.Confirmed && !s.Cfg.AllowDeclineAfterConfirm {
			return nil, event.ErrAlreadyConfirmed
		}

		result = ConfirmResult{Status: "declined", GuestName: g.Name, EventName: ev.Name}
		notify = &utils.NotificationMessage{
			RecipientID: recipientFor(ev, &g),
			EventID:     ev.ID,
			Title:       "Guest declined",
			Message:     fmt.Sprintf("%s declined the invitation to %s", g.Name, ev.Name),
			Category:    "guest",
		}

		ev.Guests = append(ev.Guests[:j], ev.Guests[j+1:]...)
		ev.AdjustGuestsAdded(g.PromoterID, -1)
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, nil, nil, "GUEST_DECLINED", map[string]interface{}{
		"guest_name": result.GuestName,
	}, ip, "success")
	if notify != nil {
		s.Producer.Publish(ctx, *notify)
	}
	return &result, nil
}

// ===========================
// Event Card
func (s *Service) EventCard(ctx context.Context, eventID string) (*EventCard, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &EventCard{
		Name:     ev.Name,
		Date:     ev.Date,
		Location: ev.Location,
		Full:     ev.ConfirmedCount() >= ev.MaxCapacity,
	}, nil
}

// ===========================
// Register
//
// Open registration through the event's RSVP link. The registrant lands
// Pending like any other new guest and confirms through their own token or
// code. Capacity is gated on confirmed guests, so pending registrations
// keep flowing in until enough of them actually confirm.
func (s *Service) Register(ctx context.Context, eventID string, req *RegisterRequest, ip string) (*RegisterResult, error) {
	var result RegisterResult
	var notify utils.NotificationMessage
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		var ev *event.Event
		for i := range events {
			if events[i].ID == eventID {
				ev = &events[i]
				break
			}
		}
		if ev == nil {
			return nil, event.ErrEventNotFound
		}
		if ev.ConfirmedCount() >= ev.MaxCapacity {
			return nil, event.ErrCapacityExceeded
		}

		g := event.Guest{
			ID:                uuid.NewString(),
			Name:              req.Name,
			Phone:             req.Phone,
			Email:             req.Email,
			ListType:          event.ListNormal,
			Timestamp:         time.Now(),
			AddedBy:           event.AddedBy{Kind: event.RefPublicLink, ID: ev.OwnerID},
			ConfirmationToken: UniqueToken(events),
			ConfirmationCode:  UniqueCode(events),
		}
		ev.Guests = append(ev.Guests, g)

		result = RegisterResult{
			GuestID:    g.ID,
			ConfirmURL: fmt.Sprintf("%s/public/confirm/%s", s.Cfg.BaseURL, g.ConfirmationToken),
			DeclineURL: fmt.Sprintf("%s/public/decline/%s", s.Cfg.BaseURL, g.ConfirmationToken),
			Code:       g.ConfirmationCode,
		}
		notify = utils.NotificationMessage{
			RecipientID: ev.OwnerID,
			EventID:     ev.ID,
			Title:       "New registration",
			Message:     fmt.Sprintf("%s registered for %s through the public link", g.Name, ev.Name),
			Category:    "guest",
		}
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, nil, &eventID, "GUEST_REGISTERED", map[string]interface{}{
			"name":  req.Name,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, nil, &eventID, "GUEST_REGISTERED", map[string]interface{}{
		"guest_id": result.GuestID,
		"name":     req.Name,
	}, ip, "success")
	s.Producer.Publish(ctx, notify)
	return &result, nil
}

// recipientFor picks who hears about a guest-side action: the promoter who
// brought the guest when there is one, otherwise the owner.
func recipientFor(ev *event.Event, g *event.Guest) string {
	if g.AddedBy.Kind == event.RefPromoter {
		if p := ev.PromoterByID(g.AddedBy.ID); p != nil {
			return p.UserID
		}
	}
	return ev.OwnerID
}
