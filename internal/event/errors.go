package event

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrEventNotFound    = errors.New("event not found")
	ErrGuestNotFound    = errors.New("guest not found")
	ErrPromoterNotFound = errors.New("promoter not found")
	ErrPromoterExists   = errors.New("user is already a promoter for this event")
	ErrCapacityExceeded = errors.New("event is at capacity")
	ErrQuotaExceeded    = errors.New("promoter guest quota exhausted")
	ErrAlreadyConfirmed = errors.New("guest already confirmed")
	ErrInvitesDisabled  = errors.New("promoter invites are disabled for this event")
	ErrCheckInDisabled  = errors.New("check-in is disabled for this event")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
)

// StorageError wraps a failure of the underlying blob store. Reads and
// writes never degrade to silent empty defaults; callers decide how to
// surface a persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
