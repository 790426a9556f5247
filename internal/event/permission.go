package event

import (
	"github.com/nomenalista/guestlist-backend/internal/auth"
)

// PermissionSet is the effective capability set of one user over one event.
// Exactly one of IsOwner / IsPromoter / neither holds; Promoter is non-nil
// only on the promoter branch and carries the record used for quota and
// visibility computations.
type PermissionSet struct {
	IsOwner    bool `json:"is_owner"`
	IsPromoter bool `json:"is_promoter"`
	IsGuest    bool `json:"is_guest"`

	CanAddGuests     bool `json:"can_add_guests"`
	CanConfirmGuests bool `json:"can_confirm_guests"`
	CanCheckInGuests bool `json:"can_check_in_guests"`
	CanViewAllGuests bool `json:"can_view_all_guests"`
	CanEditGuests    bool `json:"can_edit_guests"`
	CanDeleteGuests  bool `json:"can_delete_guests"`

	// Owner-exclusive capabilities; never true for promoters regardless of
	// their stored permission set.
	CanManagePromoters bool `json:"can_manage_promoters"`
	CanEditEvent       bool `json:"can_edit_event"`
	CanDeleteEvent     bool `json:"can_delete_event"`

	Promoter *Promoter `json:"-"`
}

// ResolvePermissions computes the capability set for user over ev. It is
// pure and reads only the snapshots it is handed: mutators re-resolve
// against the freshly loaded event, never a set cached from before an async
// boundary. A nil user or event resolves fail-closed to the zero set.
func ResolvePermissions(user *auth.User, ev *Event) PermissionSet {
	if user == nil || ev == nil {
		return PermissionSet{}
	}

	// Ownership takes precedence over any promoter record that might exist
	// for the same user id.
	if ev.OwnerID == user.ID {
		return PermissionSet{
			IsOwner:            true,
			CanAddGuests:       true,
			CanConfirmGuests:   true,
			CanCheckInGuests:   true,
			CanViewAllGuests:   true,
			CanEditGuests:      true,
			CanDeleteGuests:    true,
			CanManagePromoters: true,
			CanEditEvent:       true,
			CanDeleteEvent:     true,
		}
	}

	if p := ev.PromoterByUserID(user.ID); p != nil {
		return PermissionSet{
			IsPromoter:       true,
			CanAddGuests:     p.Permissions.CanAddGuests,
			CanConfirmGuests: p.Permissions.CanConfirmGuests,
			CanCheckInGuests: p.Permissions.CanCheckInGuests,
			CanViewAllGuests: p.Permissions.CanViewAllGuests,
			CanEditGuests:    p.Permissions.CanEditGuests,
			CanDeleteGuests:  p.Permissions.CanDeleteGuests,
			Promoter:         p,
		}
	}

	// No ownership, no promoter record: zero capabilities. IsGuest is
	// informational only and grants nothing.
	return PermissionSet{IsGuest: user.Role == auth.RoleGuest}
}

// VisibleGuests filters an event's guest list down to what ps may see.
// Full visibility sees everything; a promoter without it sees exactly the
// guests their own record added; anyone else sees nothing. The two promoter
// slices partition cleanly because a guest's AddedBy never changes after
// creation (except on promoter removal, which reassigns to the owner).
func VisibleGuests(ev *Event, ps PermissionSet) []Guest {
	if ps.CanViewAllGuests {
		out := make([]Guest, len(ev.Guests))
		copy(out, ev.Guests)
		return out
	}

	if ps.IsPromoter && ps.Promoter != nil {
		out := []Guest{}
		for _, g := range ev.Guests {
			if g.AddedBy.Kind == RefPromoter && g.AddedBy.ID == ps.Promoter.ID {
				out = append(out, g)
			}
		}
		return out
	}

	return []Guest{}
}
