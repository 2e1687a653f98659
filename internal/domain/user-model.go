package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderPhone  Provider = "phone"
	ProviderGoogle Provider = "google"
)

// IdentifierKind tells the credential login path which key to look up.
// Exactly one kind per attempt; the handler rejects ambiguous input.
type IdentifierKind string

const (
	IdentifierEmail IdentifierKind = "email"
	IdentifierPhone IdentifierKind = "phone"
)

type User struct {
	ID           string   `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string   `gorm:"not null" json:"name"`
	Email        *string  `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone        *string  `gorm:"uniqueIndex" json:"phone,omitempty"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         Role     `gorm:"type:varchar(10);not null;default:user" json:"role"`
	Provider     Provider `gorm:"type:varchar(10);not null;default:email" json:"provider"`
	ProviderID   *string  `gorm:"uniqueIndex" json:"provider_id,omitempty"`
	Image        string   `json:"image"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
