package guest

import (
	"github.com/nomenalista/guestlist-backend/internal/event"
)

type AddGuestRequest struct {
	Name     string         `json:"name" binding:"required"`
	Phone    string         `json:"phone" binding:"required"`
	Email    string         `json:"email"`
	ListType event.ListType `json:"list_type"`
}

type UpdateGuestRequest struct {
	Name     *string         `json:"name"`
	Phone    *string         `json:"phone"`
	Email    *string         `json:"email"`
	ListType *event.ListType `json:"list_type"`
}

// ConfirmationLink is what an organizer sends to a guest: an opaque link
// plus a short code the guest can type instead.
type ConfirmationLink struct {
	GuestID    string `json:"guest_id"`
	ConfirmURL string `json:"confirm_url"`
	DeclineURL string `json:"decline_url"`
	Code       string `json:"code"`
}

// QuotaStatus reports how much room a promoter has left. Remaining is nil
// when the quota is unlimited, and can be negative when the counter
// over-ran the quota; remaining <= 0 means deny.
type QuotaStatus struct {
	Quota     *int `json:"quota,omitempty"`
	Used      int  `json:"used"`
	Remaining *int `json:"remaining,omitempty"`
}

// PromoterStats summarizes one promoter's list.
type PromoterStats struct {
	PromoterID   string      `json:"promoter_id"`
	PromoterName string      `json:"promoter_name"`
	Total        int         `json:"total"`
	Confirmed    int         `json:"confirmed"`
	CheckedIn    int         `json:"checked_in"`
	Quota        QuotaStatus `json:"quota"`
}
