package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant root; every other entity reaches one
// through its ownership chain.
type Organization struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
