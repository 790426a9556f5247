package promoter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nomenalista/guestlist-backend/internal/auditlog"
	"github.com/nomenalista/guestlist-backend/internal/auth"
	"github.com/nomenalista/guestlist-backend/internal/event"
	"github.com/nomenalista/guestlist-backend/utils"
)

// Service wraps business logic for promoter management
type Service struct {
	Repo     *event.Repository
	AuthSvc  auth.Service
	AuditSvc auditlog.Service
	Producer *utils.KafkaProducer
}

func NewService(r *event.Repository, authSvc auth.Service, auditSvc auditlog.Service, producer *utils.KafkaProducer) *Service {
	return &Service{Repo: r, AuthSvc: authSvc, AuditSvc: auditSvc, Producer: producer}
}

type AddPromoterRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone"`

	Permissions *event.PromoterPermissions `json:"permissions"`
	GuestQuota  *int                       `json:"guest_quota"`
}

type UpdatePromoterRequest struct {
	Permissions *event.PromoterPermissions `json:"permissions"`
	GuestQuota  *int                       `json:"guest_quota"`
	RemoveQuota bool                       `json:"remove_quota"`
}

type PublicJoinRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// ===========================
// Add Promoter
//
// Owner-only. When no user id is supplied the identity is registered on the
// promoter's behalf so the record is bound before they ever open the app.
func (s *Service) AddPromoter(ctx context.Context, actor *auth.User, eventID string, req *AddPromoterRequest, ip string) (*event.Promoter, error) {
	userID := req.UserID
	if userID == "" {
		user, err := s.AuthSvc.CreateUser(req.Name, req.Email, req.Phone, auth.RolePromoter)
		if err != nil {
			return nil, err
		}
		userID = user.ID
	}

	perms := event.DefaultPromoterPermissions()
	if req.Permissions != nil {
		perms = *req.Permissions
	}

	var added event.Promoter
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		ps := event.ResolvePermissions(actor, ev)
		if !ps.CanManagePromoters {
			return nil, event.ErrPermissionDenied
		}
		if ev.PromoterByUserID(userID) != nil {
			return nil, event.ErrPromoterExists
		}

		added = event.Promoter{
			ID:          uuid.NewString(),
			UserID:      userID,
			EventID:     ev.ID,
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Permissions: perms,
			GuestQuota:  req.GuestQuota,
			CreatedAt:   time.Now(),
			InvitedBy:   actor.ID,
		}
		ev.Promoters = append(ev.Promoters, added)
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "PROMOTER_ADDED", map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "PROMOTER_ADDED", map[string]interface{}{
		"promoter_id": added.ID,
		"name":        added.Name,
	}, ip, "success")

	s.Producer.Publish(ctx, utils.NotificationMessage{
		RecipientID: userID,
		EventID:     eventID,
		Title:       "You were added as a promoter",
		Message:     fmt.Sprintf("%s added you as a promoter", actor.Name),
		Category:    "promoter",
	})
	return &added, nil
}

// ===========================
// List Promoters
func (s *Service) ListPromoters(ctx context.Context, actor *auth.User, eventID string) ([]event.Promoter, error) {
	ev, err := s.Repo.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ps := event.ResolvePermissions(actor, ev)
	if !ps.CanManagePromoters {
		return nil, event.ErrPermissionDenied
	}
	return ev.Promoters, nil
}

// ===========================
// Update Promoter
func (s *Service) UpdatePromoter(ctx context.Context, actor *auth.User, eventID, promoterID string, req *UpdatePromoterRequest, ip string) (*event.Promoter, error) {
	var updated event.Promoter
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		ps := event.ResolvePermissions(actor, ev)
		if !ps.CanManagePromoters {
			return nil, event.ErrPermissionDenied
		}

		p := ev.PromoterByID(promoterID)
		if p == nil {
			return nil, event.ErrPromoterNotFound
		}

		if req.Permissions != nil {
			p.Permissions = *req.Permissions
		}
		if req.RemoveQuota {
			p.GuestQuota = nil
		} else if req.GuestQuota != nil {
			p.GuestQuota = req.GuestQuota
		}
		updated = *p
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "PROMOTER_UPDATED", map[string]interface{}{
			"promoter_id": promoterID,
			"error":       err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "PROMOTER_UPDATED", map[string]interface{}{
		"promoter_id": promoterID,
	}, ip, "success")

	s.Producer.Publish(ctx, utils.NotificationMessage{
		RecipientID: updated.UserID,
		EventID:     eventID,
		Title:       "Your promoter access changed",
		Message:     fmt.Sprintf("%s updated your permissions", actor.Name),
		Category:    "promoter",
	})
	return &updated, nil
}

// ===========================
// Delete Promoter
//
// The promoter's guests are not deleted with them; they are reassigned to
// the owner so the list stays intact and every guest keeps a valid AddedBy
// reference.
func (s *Service) DeletePromoter(ctx context.Context, actor *auth.User, eventID, promoterID string, ip string) error {
	var removedUserID string
	err := s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}

		ps := event.ResolvePermissions(actor, ev)
		if !ps.CanManagePromoters {
			return nil, event.ErrPermissionDenied
		}

		idx := -1
		for i := range ev.Promoters {
			if ev.Promoters[i].ID == promoterID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, event.ErrPromoterNotFound
		}
		removedUserID = ev.Promoters[idx].UserID

		for i := range ev.Guests {
			g := &ev.Guests[i]
			if g.AddedBy.Kind == event.RefPromoter && g.AddedBy.ID == promoterID {
				g.AddedBy = event.AddedBy{Kind: event.RefOwner, ID: ev.OwnerID}
				g.PromoterID = ""
			}
		}
		ev.Promoters = append(ev.Promoters[:idx], ev.Promoters[idx+1:]...)
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "PROMOTER_DELETED", map[string]interface{}{
			"promoter_id": promoterID,
			"error":       err.Error(),
		}, ip, "failure")
		return err
	}

	s.AuditSvc.LogAction(ctx, &actor.ID, &eventID, "PROMOTER_DELETED", map[string]interface{}{
		"promoter_id": promoterID,
	}, ip, "success")

	s.Producer.Publish(ctx, utils.NotificationMessage{
		RecipientID: removedUserID,
		EventID:     eventID,
		Title:       "Promoter access removed",
		Message:     "You are no longer a promoter for this event",
		Category:    "promoter",
	})
	return nil
}

// ===========================
// Public Join
//
// Self-registration through the event's invite link. Only available while
// the event allows promoter invites; the new promoter starts with default
// permissions and no quota, and gets a session so the invite link lands them
// straight in the app.
func (s *Service) PublicJoin(ctx context.Context, eventID string, req *PublicJoinRequest, ip string) (*event.Promoter, *auth.TokenPair, error) {
	tokens, user, err := s.AuthSvc.StartSession(auth.SessionRequest{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  auth.RolePromoter,
	})
	if err != nil {
		return nil, nil, err
	}

	var added event.Promoter
	var ownerID string
	err = s.Repo.Mutate(ctx, func(events []event.Event) ([]event.Event, error) {
		ev := eventIn(events, eventID)
		if ev == nil {
			return nil, event.ErrEventNotFound
		}
		if !ev.Settings.AllowPromoterInvites {
			return nil, event.ErrInvitesDisabled
		}
		if ev.PromoterByUserID(user.ID) != nil {
			return nil, event.ErrPromoterExists
		}

		added = event.Promoter{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			EventID:     ev.ID,
			Name:        req.Name,
			Email:       user.Email,
			Phone:       req.Phone,
			Permissions: event.DefaultPromoterPermissions(),
			CreatedAt:   time.Now(),
			InvitedBy:   ev.OwnerID,
		}
		ev.Promoters = append(ev.Promoters, added)
		ownerID = ev.OwnerID
		return events, nil
	})
	if err != nil {
		s.AuditSvc.LogAction(ctx, &user.ID, &eventID, "PROMOTER_JOINED", map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		}, ip, "failure")
		return nil, nil, err
	}

	s.AuditSvc.LogAction(ctx, &user.ID, &eventID, "PROMOTER_JOINED", map[string]interface{}{
		"promoter_id": added.ID,
	}, ip, "success")

	s.Producer.Publish(ctx, utils.NotificationMessage{
		RecipientID: ownerID,
		EventID:     eventID,
		Title:       "New promoter joined",
		Message:     fmt.Sprintf("%s joined through your invite link", req.Name),
		Category:    "promoter",
	})
	return &added, tokens, nil
}

func eventIn(events []event.Event, id string) *event.Event {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}
