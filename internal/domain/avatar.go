package domain

import "context"

// BlobStore holds at most one avatar blob per user at a path deterministic
// in the user id. Put overwrites; there is no history.
type BlobStore interface {
	PutAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error)
	DeleteAvatar(ctx context.Context, userID string) error
}

type AvatarUsecase interface {
	// Upload validates the image locally, stores the blob, and points the
	// user record's photo_url at the returned URL.
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	Remove(ctx context.Context) error
}
