package usecase

import (
	"context"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type profileUsecase struct {
	repo     domain.ProfileRepository
	validate *validator.Validate
}

func NewProfileUsecase(repo domain.ProfileRepository, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{
		repo:     repo,
		validate: validate,
	}
}

func ownerFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || userID == "" {
		return "", apperror.Unauthorized("User not authenticated")
	}
	return userID, nil
}

func (u *profileUsecase) GetOwn(ctx context.Context) (*domain.Profile, error) {
	userID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		// Pre-bootstrap or deleted out-of-band: the owner sees an empty
		// profile, never an error.
		return domain.NewDefaultProfile(), nil
	}
	return profile, nil
}

func (u *profileUsecase) View(ctx context.Context, ownerID string) (*domain.Profile, error) {
	// Anonymous viewers are allowed; the gate decides per visibility.
	viewerID, _ := ctx.Value(domain.KeyUserID).(string)

	profile, err := u.repo.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !domain.CanView(viewerID, ownerID, profile) {
		// Absent and private are deliberately identical to a non-owner so
		// existence does not leak.
		return nil, apperror.NotFound("Profile not found")
	}
	if profile == nil {
		return domain.NewDefaultProfile(), nil
	}
	return profile, nil
}

func (u *profileUsecase) Save(ctx context.Context, patch *domain.ProfilePatch) error {
	userID, err := ownerFromContext(ctx)
	if err != nil {
		return err
	}

	patch.Normalize()
	if err := u.validatePatch(patch); err != nil {
		return err
	}

	return u.repo.Save(ctx, userID, patch)
}

// validatePatch re-validates on the write path; editor-side checks are not a
// security boundary.
func (u *profileUsecase) validatePatch(patch *domain.ProfilePatch) error {
	if patch.Visibility != nil && !patch.Visibility.Valid() {
		return apperror.BadRequest("Visibility must be one of: public, unlisted, private")
	}
	if patch.Experience != nil {
		for i := range *patch.Experience {
			if err := u.validate.Struct(&(*patch.Experience)[i]); err != nil {
				return apperror.BadRequest(validation.Format(err))
			}
		}
	}
	if patch.Education != nil {
		for i := range *patch.Education {
			if err := u.validate.Struct(&(*patch.Education)[i]); err != nil {
				return apperror.BadRequest(validation.Format(err))
			}
		}
	}
	if patch.Projects != nil {
		for i := range *patch.Projects {
			if err := u.validate.Struct(&(*patch.Projects)[i]); err != nil {
				return apperror.BadRequest(validation.Format(err))
			}
		}
	}
	if patch.Certifications != nil {
		for i := range *patch.Certifications {
			if err := u.validate.Struct(&(*patch.Certifications)[i]); err != nil {
				return apperror.BadRequest(validation.Format(err))
			}
		}
	}
	if patch.Links != nil {
		if err := u.validate.Struct(patch.Links); err != nil {
			return apperror.BadRequest(validation.Format(err))
		}
	}
	return nil
}

func (u *profileUsecase) AddSkill(ctx context.Context, skill string) (*domain.Profile, error) {
	profile, err := u.GetOwn(ctx)
	if err != nil {
		return nil, err
	}

	// Duplicates are a silent no-op; only a real change is written
	if profile.AddSkill(skill) {
		userID, _ := ownerFromContext(ctx)
		if err := u.repo.Save(ctx, userID, &domain.ProfilePatch{Skills: &profile.Skills}); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (u *profileUsecase) RemoveSkillAt(ctx context.Context, index int) (*domain.Profile, error) {
	profile, err := u.GetOwn(ctx)
	if err != nil {
		return nil, err
	}

	if !profile.RemoveSkillAt(index) {
		return nil, apperror.BadRequest("Skill index out of range")
	}

	userID, _ := ownerFromContext(ctx)
	if err := u.repo.Save(ctx, userID, &domain.ProfilePatch{Skills: &profile.Skills}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (u *profileUsecase) AddExperience(ctx context.Context, item domain.ExperienceItem) (*domain.Profile, error) {
	item.Normalize()
	if err := u.validate.Struct(&item); err != nil {
		return nil, apperror.BadRequest(validation.Format(err))
	}

	profile, err := u.GetOwn(ctx)
	if err != nil {
		return nil, err
	}

	profile.AddExperience(item)

	userID, _ := ownerFromContext(ctx)
	if err := u.repo.Save(ctx, userID, &domain.ProfilePatch{Experience: &profile.Experience}); err != nil {
		return nil, err
	}
	return profile, nil
}
