package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated identity. Every user owns exactly one wallet.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
