package usecase

import (
	"context"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/imaging"
	"go-profile-backend/pkg/logger"
)

type avatarUsecase struct {
	userRepo domain.UserRepository
	blobs    domain.BlobStore
}

func NewAvatarUsecase(userRepo domain.UserRepository, blobs domain.BlobStore) domain.AvatarUsecase {
	return &avatarUsecase{userRepo: userRepo, blobs: blobs}
}

// Upload validates locally, then runs the two-phase write: blob put at the
// user's single avatar slot, then the photo_url record update. The two steps
// are not atomic; the record update is retried once before the failure is
// surfaced, leaving at worst a stale photo_url until the next attempt.
func (u *avatarUsecase) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	userID, err := ownerFromContext(ctx)
	if err != nil {
		return "", err
	}

	if err := imaging.ValidateAvatar(data, contentType); err != nil {
		return "", err
	}

	url, err := u.blobs.PutAvatar(ctx, userID, data, contentType)
	if err != nil {
		return "", err
	}

	if err := u.userRepo.UpdatePhotoURL(ctx, userID, &url); err != nil {
		logger.Log.Warn("photo_url update failed after upload, retrying", "user_id", userID, "error", err)
		if err := u.userRepo.UpdatePhotoURL(ctx, userID, &url); err != nil {
			return "", err
		}
	}

	return url, nil
}

func (u *avatarUsecase) Remove(ctx context.Context) error {
	userID, err := ownerFromContext(ctx)
	if err != nil {
		return err
	}

	if err := u.blobs.DeleteAvatar(ctx, userID); err != nil {
		return err
	}
	return u.userRepo.UpdatePhotoURL(ctx, userID, nil)
}
