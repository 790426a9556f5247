package event

import (
	"time"
)

// ============================
// Guest list entities
//
// The whole collection of events (with embedded guests and promoters) is the
// unit of persistence; see Repository.

type ListType string

const (
	ListNormal   ListType = "Normal"
	ListVIP      ListType = "VIP"
	ListPartners ListType = "Parceiros"
)

// RefKind tags an AddedBy reference: a guest row records who created it, and
// that creator is either a user (the owner), a promoter record, or the
// event's public registration link (attributed to the owner's user id).
type RefKind string

const (
	RefOwner      RefKind = "owner"
	RefPromoter   RefKind = "promoter"
	RefPublicLink RefKind = "public_link"
)

// AddedBy is a tagged reference. The id of an owner/public_link reference is
// a user id; the id of a promoter reference is the promoter record's own id,
// not the promoter's user id.
type AddedBy struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

type Guest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email,omitempty"`
	Confirmed   bool     `json:"confirmed"`
	CheckedIn   bool     `json:"checked_in"`
	ListType    ListType `json:"list_type"`
	Timestamp   time.Time `json:"timestamp"`
	AddedBy     AddedBy  `json:"added_by"`
	PromoterID  string   `json:"promoter_id,omitempty"`

	// ConfirmationToken and ConfirmationCode are set at creation and never
	// change. The code is stored uppercase; lookups normalize before
	// comparing.
	ConfirmationToken string     `json:"confirmation_token"`
	ConfirmationCode  string     `json:"confirmation_code"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
}

type PromoterPermissions struct {
	CanAddGuests     bool `json:"can_add_guests"`
	CanConfirmGuests bool `json:"can_confirm_guests"`
	CanCheckInGuests bool `json:"can_check_in_guests"`
	CanViewAllGuests bool `json:"can_view_all_guests"`
	CanEditGuests    bool `json:"can_edit_guests"`
	CanDeleteGuests  bool `json:"can_delete_guests"`
}

// DefaultPromoterPermissions is the permission set new promoters start with:
// they can work their own list but not see or touch anyone else's.
func DefaultPromoterPermissions() PromoterPermissions {
	return PromoterPermissions{
		CanAddGuests:     true,
		CanConfirmGuests: true,
		CanCheckInGuests: true,
		CanViewAllGuests: false,
		CanEditGuests:    false,
		CanDeleteGuests:  false,
	}
}

type Promoter struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	EventID     string              `json:"event_id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Permissions PromoterPermissions `json:"permissions"`

	// GuestQuota is an optional ceiling; nil means unlimited. GuestsAdded is
	// a denormalized counter kept in sync through Event.AdjustGuestsAdded —
	// never increment or decrement it inline.
	GuestQuota  *int      `json:"guest_quota,omitempty"`
	GuestsAdded int       `json:"guests_added"`
	CreatedAt   time.Time `json:"created_at"`
	InvitedBy   string    `json:"invited_by"`
}

type EventSettings struct {
	AllowPromoterInvites bool `json:"allow_promoter_invites"`
	EnableCheckIn        bool `json:"enable_check_in"`
}

type Event struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Date        string        `json:"date"`
	Location    string        `json:"location"`
	MaxCapacity int           `json:"max_capacity"`
	Guests      []Guest       `json:"guests"`
	Promoters   []Promoter    `json:"promoters"`
	OwnerID     string        `json:"owner_id"`
	OwnerName   string        `json:"owner_name"`
	CreatedAt   time.Time     `json:"created_at"`
	Settings    EventSettings `json:"settings"`
}

// PromoterByUserID returns the promoter record bound to the given user, if
// any.
func (e *Event) PromoterByUserID(userID string) *Promoter {
	for i := range e.Promoters {
		if e.Promoters[i].UserID == userID {
			return &e.Promoters[i]
		}
	}
	return nil
}

// PromoterByID looks a promoter up by its own record id.
func (e *Event) PromoterByID(id string) *Promoter {
	for i := range e.Promoters {
		if e.Promoters[i].ID == id {
			return &e.Promoters[i]
		}
	}
	return nil
}

// GuestByID returns the index of the guest inside the event, or -1.
func (e *Event) GuestByID(id string) int {
	for i := range e.Guests {
		if e.Guests[i].ID == id {
			return i
		}
	}
	return -1
}

// ConfirmedCount counts confirmed guests; the public registration capacity
// gate compares this, not the total guest count, against MaxCapacity.
func (e *Event) ConfirmedCount() int {
	n := 0
	for i := range e.Guests {
		if e.Guests[i].Confirmed {
			n++
		}
	}
	return n
}

// AdjustGuestsAdded is the single place the denormalized per-promoter guest
// counter changes. Decrements floor at zero.
func (e *Event) AdjustGuestsAdded(promoterID string, delta int) {
	if promoterID == "" {
		return
	}
	p := e.PromoterByID(promoterID)
	if p == nil {
		return
	}
	p.GuestsAdded += delta
	if p.GuestsAdded < 0 {
		p.GuestsAdded = 0
	}
}
