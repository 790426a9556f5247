package notification

import (
	"context"
	"log"

	"firebase.google.com/go/v4/messaging"

	"github.com/nomenalista/guestlist-backend/utils"
)

type Service interface {
	// Deliver fans one published message out to the recipient's in-app feed
	// and their registered devices.
	Deliver(ctx context.Context, msg utils.NotificationMessage) error

	ListMine(ctx context.Context, userID string, limit int) ([]InAppNotification, error)
	MarkRead(ctx context.Context, id uint, userID string) error

	RegisterDeviceToken(ctx context.Context, userID string, req *RegisterTokenRequest) error
	RemoveDeviceToken(ctx context.Context, userID, deviceToken string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Deliver(ctx context.Context, msg utils.NotificationMessage) error {
	entry := &InAppNotification{
		UserID:   msg.RecipientID,
		EventID:  msg.EventID,
		Title:    msg.Title,
		Message:  msg.Message,
		Category: msg.Category,
	}
	if err := s.repo.CreateInApp(ctx, entry); err != nil {
		return err
	}

	// Push is best-effort on top of the persisted in-app entry.
	s.push(ctx, msg)
	return nil
}

func (s *service) push(ctx context.Context, msg utils.NotificationMessage) {
	if !utils.IsFCMEnabled() {
		return
	}

	tokens, err := s.repo.ActiveTokensForUser(ctx, msg.RecipientID)
	if err != nil {
		log.Printf("fcm: failed to load device tokens for %s: %v", msg.RecipientID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	client := utils.FCMClient()
	for _, token := range tokens {
		_, err := client.Send(ctx, &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Message,
			},
			Data: map[string]string{
				"event_id": msg.EventID,
				"category": msg.Category,
			},
		})
		if err != nil {
			log.Printf("fcm: send to %s failed: %v", msg.RecipientID, err)
			// Unregistered tokens are dead weight; stop pushing to them.
			if messaging.IsUnregistered(err) {
				if derr := s.repo.DeactivateDeviceToken(ctx, msg.RecipientID, token); derr != nil {
					log.Printf("fcm: failed to deactivate token: %v", derr)
				}
			}
		}
	}
}

func (s *service) ListMine(ctx context.Context, userID string, limit int) ([]InAppNotification, error) {
	return s.repo.ListInAppByUser(ctx, userID, limit)
}

func (s *service) MarkRead(ctx context.Context, id uint, userID string) error {
	return s.repo.MarkInAppAsRead(ctx, id, userID)
}

func (s *service) RegisterDeviceToken(ctx context.Context, userID string, req *RegisterTokenRequest) error {
	return s.repo.SaveDeviceToken(ctx, &FCMDeviceToken{
		UserID:      userID,
		DeviceToken: req.DeviceToken,
		DeviceType:  req.DeviceType,
		IsActive:    true,
	})
}

func (s *service) RemoveDeviceToken(ctx context.Context, userID, deviceToken string) error {
	return s.repo.DeactivateDeviceToken(ctx, userID, deviceToken)
}
