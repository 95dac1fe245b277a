package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is an identity record. Stored in the "profiles" table.
// PasswordHash is opaque and must never leave the server.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;"`
	Username     string    `gorm:"size:20;not null;uniqueIndex"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	Bio          string    `gorm:"type:text"`
	AvatarURL    string    `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Account) TableName() string {
	return "profiles"
}

func (a *Account) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// PublicAccount is the shape of an account that is safe to return
// from the API. It carries no credential material.
type PublicAccount struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips the account down to its API representation.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Bio:       a.Bio,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt,
	}
}
