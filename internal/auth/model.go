package auth

import (
	"time"
)

const (
	RoleOwner    = "owner"
	RolePromoter = "promoter"
	RoleGuest    = "guest"
)

// User is a session identity. The role is a self-asserted label carried for
// display and for the resolver's informational isGuest flag; it grants no
// capability by itself — capabilities come from event ownership or a
// promoter record.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Email     string    `gorm:"size:150;not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

// ValidRole reports whether the asserted role label is one we store.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RolePromoter || role == RoleGuest
}

type SessionRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Role  string `json:"role" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
