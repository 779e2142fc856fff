package domain

import (
	"context"
	"time"
)

const (
	RoleCandidate = "candidate"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// Identity is the authenticated principal as reported by the identity
// provider. Read-only to this system.
type Identity struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

// User is the account metadata record, one per identity, keyed by identity
// id. Created once at bootstrap; afterwards only photo_url and display_name
// are mutated by the running application.
type User struct {
	ID          string    `json:"id"` // identity provider UUID
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	PhotoURL    *string   `json:"photo_url"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// GetByID returns (nil, nil) when no record exists.
	GetByID(ctx context.Context, id string) (*User, error)
	// UpdatePhotoURL sets photo_url (nil clears it) and refreshes updated_at.
	UpdatePhotoURL(ctx context.Context, id string, url *string) error
	// UpdateDisplayName sets display_name and refreshes updated_at.
	UpdateDisplayName(ctx context.Context, id, name string) error
}

type AuthUsecase interface {
	// Ensure guarantees exactly one User and one Profile record exist for
	// the identity. Idempotent; called on every successful sign-in.
	Ensure(ctx context.Context, identity Identity) error
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	// UpdateDisplayName renames the local record after the identity provider
	// accepted the change.
	UpdateDisplayName(ctx context.Context, id, name string) error
}
