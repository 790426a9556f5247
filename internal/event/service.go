package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
)

// Service wraps business logic for event lifecycle operations
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
}

func NewService(r *Repository, auditSvc auditlog.Service) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc}
}

type SettingsRequest struct {
	AllowPromoterInvites *bool `json:"allow_promoter_invites"`
	EnableCheckIn        *bool `json:"enable_check_in"`
}

type CreateEventRequest struct {
	Name        string           `json:"name" binding:"required"`
	Date        string           `json:"date" binding:"required"`
	Location    string           `json:"location"`
	MaxCapacity int              `json:"max_capacity" binding:"required,gt=0"`
	Settings    *SettingsRequest `json:"settings"`
}

type UpdateEventRequest struct {
	Name        *string          `json:"name"`
	Date        *string          `json:"date"`
	Location    *string          `json:"location"`
	MaxCapacity *int             `json:"max_capacity"`
	Settings    *SettingsRequest `json:"settings"`
}

// ===========================
// Create Event
func (s *Service) CreateEvent(ctx context.Context, actor *auth.User, req *CreateEventRequest, ip string) (*Event, error) {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, nil, "EVENT_CREATED", map[string]interface{}{
			"name":  req.Name,
			"error": "invalid date format",
		}, ip, "failure")
		return nil, ErrInvalidDate
	}

	settings := EventSettings{AllowPromoterInvites: true, EnableCheckIn: true}
	if req.Settings != nil {
		if req.Settings.AllowPromoterInvites != nil {
			settings.AllowPromoterInvites = *req.Settings.AllowPromoterInvites
		}
		if req.Settings.EnableCheckIn != nil {
			settings.EnableCheckIn = *req.Settings.EnableCheckIn
		}
	}

	ev := Event{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Date:        req.Date,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
		Guests:      []Guest{},
		Promoters:   []Promoter{},
		OwnerID:     actor.ID,
		OwnerName:   actor.Name,
		CreatedAt:   time.Now(),
		Settings:    settings,
	}

	err := s.Repo.Mutate(ctx, func(events []Event) ([]Event, error) {
		return append(events, ev), nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &ev.ID, "EVENT_CREATED", map[string]interface{}{
			"name":  req.Name,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &ev.ID, "EVENT_CREATED", map[string]interface{}{
		"name":         ev.Name,
		"date":         ev.Date,
		"max_capacity": ev.MaxCapacity,
	}, ip, "success")
	return &ev, nil
}

// ===========================
// List Events
//
// Returns the events the actor can see at all: the ones they own plus the
// ones where a promoter record is bound to their user id, in stored order.
func (s *Service) ListEvents(ctx context.Context, actor *auth.User) ([]Event, error) {
	events, err := s.Repo.Events(ctx)
	if err != nil {
		return nil, err
	}

	accessible := []Event{}
	for i := range events {
		if events[i].OwnerID == actor.ID || events[i].PromoterByUserID(actor.ID) != nil {
			accessible = append(accessible, events[i])
		}
	}
	return accessible, nil
}

// ===========================
// Get Event
func (s *Service) GetEvent(ctx context.Context, actor *auth.User, id string) (*Event, PermissionSet, error) {
	ev, err := s.Repo.EventByID(ctx, id)
	if err != nil {
		return nil, PermissionSet{}, err
	}

	perms := ResolvePermissions(actor, ev)
	if !perms.IsOwner && !perms.IsPromoter {
		return nil, PermissionSet{}, ErrPermissionDenied
	}
	return ev, perms, nil
}

// ===========================
// Update Event
func (s *Service) UpdateEvent(ctx context.Context, actor *auth.User, id string, req *UpdateEventRequest, ip string) (*Event, error) {
	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			return nil, ErrInvalidDate
		}
	}

	var updated Event
	err := s.Repo.Mutate(ctx, func(events []Event) ([]Event, error) {
		idx := findEvent(events, id)
		if idx < 0 {
			return nil, ErrEventNotFound
		}

		// Permissions are re-resolved against the event as it exists now,
		// not a snapshot the caller may have held across requests.
		perms := ResolvePermissions(actor, &events[idx])
		if !perms.CanEditEvent {
			return nil, ErrPermissionDenied
		}

		ev := &events[idx]
		if req.Name != nil {
			ev.Name = *req.Name
		}
		if req.Date != nil {
			ev.Date = *req.Date
		}
		if req.Location != nil {
			ev.Location = *req.Location
		}
		if req.MaxCapacity != nil && *req.MaxCapacity > 0 {
			ev.MaxCapacity = *req.MaxCapacity
		}
		if req.Settings != nil {
			if req.Settings.AllowPromoterInvites != nil {
				ev.Settings.AllowPromoterInvites = *req.Settings.AllowPromoterInvites
			}
			if req.Settings.EnableCheckIn != nil {
				ev.Settings.EnableCheckIn = *req.Settings.EnableCheckIn
			}
		}

		updated = *ev
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &id, "EVENT_UPDATED", map[string]interface{}{
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &id, "EVENT_UPDATED", map[string]interface{}{
		"name": updated.Name,
	}, ip, "success")
	return &updated, nil
}

// ===========================
// Delete Event
//
// Removing the event removes its guests and promoter records with it; they
// are embedded and have no life of their own. Returns the id of the first
// event the actor can still access so the client has something to select,
// or "" when none remain.
func (s *Service) DeleteEvent(ctx context.Context, actor *auth.User, id string, ip string) (string, error) {
	var nextID string
	err := s.Repo.Mutate(ctx, func(events []Event) ([]Event, error) {
		idx := findEvent(events, id)
		if idx < 0 {
			return nil, ErrEventNotFound
		}

		perms := ResolvePermissions(actor, &events[idx])
		if !perms.CanDeleteEvent {
			return nil, ErrPermissionDenied
		}

		events = append(events[:idx], events[idx+1:]...)
		for i := range events {
			if events[i].OwnerID == actor.ID || events[i].PromoterByUserID(actor.ID) != nil {
				nextID = events[i].ID
				break
			}
		}
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &id, "EVENT_DELETED", map[string]interface{}{
			"error": err.Error(),
		}, ip, "failure")
		return "", err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &id, "EVENT_DELETED", nil, ip, "success")
	return nextID, nil
}
