package usecase

import (
	"context"
	"time"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"
)

type authUsecase struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
}

func NewAuthUsecase(userRepo domain.UserRepository, profileRepo domain.ProfileRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, profileRepo: profileRepo}
}

// Ensure runs on every successful sign-in and sign-up, so it must be
// idempotent. The two creates are not one transaction: a profile-create
// failure after the user record exists surfaces BootstrapIncomplete (the
// sign-in itself is not blocked) and is healed on the next call, which
// re-checks the profile record even for existing users.
func (u *authUsecase) Ensure(ctx context.Context, identity domain.Identity) error {
	existing, err := u.userRepo.GetByID(ctx, identity.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		now := time.Now()
		user := &domain.User{
			ID:          identity.ID,
			Email:       identity.Email,
			DisplayName: identity.DisplayName,
			PhotoURL:    identity.PhotoURL,
			Role:        domain.RoleCandidate,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			// A concurrent Ensure may have won the insert; that still
			// counts as the record existing.
			if !apperror.IsKind(err, apperror.KindAlreadyExists) {
				return err
			}
		}
	}

	profile, err := u.profileRepo.GetByUserID(ctx, identity.ID)
	if err != nil {
		return apperror.BootstrapIncomplete(err)
	}
	if profile == nil {
		if err := u.profileRepo.CreateDefault(ctx, identity.ID); err != nil {
			logger.Log.Warn("profile bootstrap failed", "user_id", identity.ID, "error", err)
			return apperror.BootstrapIncomplete(err)
		}
	}

	return nil
}

func (u *authUsecase) UpdateDisplayName(ctx context.Context, id, name string) error {
	return u.userRepo.UpdateDisplayName(ctx, id, name)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}
