package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"go-profile-backend/internal/domain"
	"go-profile-backend/internal/usecase"
	"go-profile-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdatePhotoURL(ctx context.Context, id string, url *string) error {
	return m.Called(ctx, id, url).Error(0)
}
func (m *MockUserRepo) UpdateDisplayName(ctx context.Context, id, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepo) CreateDefault(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *MockProfileRepo) Save(ctx context.Context, userID string, patch *domain.ProfilePatch) error {
	return m.Called(ctx, userID, patch).Error(0)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) PutAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, userID, data, contentType)
	return args.String(0), args.Error(1)
}
func (m *MockBlobStore) DeleteAvatar(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func authedCtx(userID string) context.Context {
	return context.WithValue(context.Background(), domain.KeyUserID, userID)
}

func TestEnsureBootstrap(t *testing.T) {
	identity := domain.Identity{ID: "u1", Email: "u1@example.com"}

	t.Run("Should create both records on first sign-in", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(userRepo, profileRepo)

		userRepo.On("GetByID", mock.Anything, "u1").Return(nil, nil)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, "u1", u.ID)
			assert.Equal(t, domain.RoleCandidate, u.Role)
		})
		profileRepo.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)
		profileRepo.On("CreateDefault", mock.Anything, "u1").Return(nil)

		err := uc.Ensure(context.Background(), identity)
		assert.NoError(t, err)
		userRepo.AssertExpectations(t)
		profileRepo.AssertExpectations(t)
	})

	t.Run("Should be a no-op when both records exist", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(userRepo, profileRepo)

		userRepo.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
		profileRepo.On("GetByUserID", mock.Anything, "u1").Return(domain.NewDefaultProfile(), nil)

		err := uc.Ensure(context.Background(), identity)
		assert.NoError(t, err)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		profileRepo.AssertNotCalled(t, "CreateDefault", mock.Anything, mock.Anything)
	})

	t.Run("Should surface bootstrap-incomplete when profile create fails", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(userRepo, profileRepo)

		userRepo.On("GetByID", mock.Anything, "u1").Return(nil, nil)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		profileRepo.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)
		profileRepo.On("CreateDefault", mock.Anything, "u1").Return(errors.New("write refused"))

		err := uc.Ensure(context.Background(), identity)
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindBootstrapIncomplete))
	})

	t.Run("Should heal a missing profile for an existing user", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(userRepo, profileRepo)

		userRepo.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
		profileRepo.On("GetByUserID", mock.Anything, "u1").Return(nil, nil)
		profileRepo.On("CreateDefault", mock.Anything, "u1").Return(nil)

		err := uc.Ensure(context.Background(), identity)
		assert.NoError(t, err)
		profileRepo.AssertCalled(t, "CreateDefault", mock.Anything, "u1")
	})

	t.Run("Should tolerate losing the user insert race", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(userRepo, profileRepo)

		userRepo.On("GetByID", mock.Anything, "u1").Return(nil, nil)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(apperror.AlreadyExists("User record already exists"))
		profileRepo.On("GetByUserID", mock.Anything, "u1").Return(domain.NewDefaultProfile(), nil)

		err := uc.Ensure(context.Background(), identity)
		assert.NoError(t, err)
	})
}

func TestProfileView(t *testing.T) {
	t.Run("Should hide private profiles from other users", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("GetByUserID", mock.Anything, "owner").Return(&domain.Profile{Visibility: domain.VisibilityPrivate}, nil)

		_, err := uc.View(authedCtx("viewer"), "owner")
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("Should report absent profiles identically to private ones", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("GetByUserID", mock.Anything, "owner").Return(nil, nil)

		_, err := uc.View(authedCtx("viewer"), "owner")
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("Should show the owner their private profile", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("GetByUserID", mock.Anything, "owner").Return(&domain.Profile{Visibility: domain.VisibilityPrivate}, nil)

		profile, err := uc.View(authedCtx("owner"), "owner")
		assert.NoError(t, err)
		assert.Equal(t, domain.VisibilityPrivate, profile.Visibility)
	})

	t.Run("Should show unlisted profiles to anonymous viewers", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("GetByUserID", mock.Anything, "owner").Return(&domain.Profile{Visibility: domain.VisibilityUnlisted}, nil)

		profile, err := uc.View(context.Background(), "owner")
		assert.NoError(t, err)
		assert.NotNil(t, profile)
	})

	t.Run("Should give the owner an empty default when no record exists", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("GetByUserID", mock.Anything, "owner").Return(nil, nil)

		profile, err := uc.GetOwn(authedCtx("owner"))
		assert.NoError(t, err)
		assert.Equal(t, domain.VisibilityPublic, profile.Visibility)
		assert.Empty(t, profile.Skills)
	})
}

func TestProfileSave(t *testing.T) {
	strp := func(s string) *string { return &s }

	t.Run("Should pass a headline-only patch through untouched", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("Save", mock.Anything, "u1", mock.AnythingOfType("*domain.ProfilePatch")).Return(nil).Run(func(args mock.Arguments) {
			patch := args.Get(2).(*domain.ProfilePatch)
			assert.Equal(t, "New headline", *patch.Headline)
			assert.Nil(t, patch.Bio)
			assert.Nil(t, patch.Skills)
		})

		err := uc.Save(authedCtx("u1"), &domain.ProfilePatch{Headline: strp("  New headline ")})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Should drop an all-empty links object before the write", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("Save", mock.Anything, "u1", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			patch := args.Get(2).(*domain.ProfilePatch)
			assert.Nil(t, patch.Links)
		})

		err := uc.Save(authedCtx("u1"), &domain.ProfilePatch{Links: &domain.Links{}})
		assert.NoError(t, err)
	})

	t.Run("Should reject an unknown visibility", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		vis := domain.Visibility("friends-only")
		err := uc.Save(authedCtx("u1"), &domain.ProfilePatch{Visibility: &vis})
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject experience items missing required fields", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		items := []domain.ExperienceItem{{Company: "Acme"}} // no role, no start date
		err := uc.Save(authedCtx("u1"), &domain.ProfilePatch{Experience: &items})
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	})

	t.Run("Should reject malformed link URLs", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		err := uc.Save(authedCtx("u1"), &domain.ProfilePatch{Links: &domain.Links{Github: "not a url"}})
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	})

	t.Run("Should fail without an authenticated user", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		err := uc.Save(context.Background(), &domain.ProfilePatch{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not authenticated")
	})
}

func TestSkillOperations(t *testing.T) {
	t.Run("Should persist a new skill", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		existing := domain.NewDefaultProfile()
		existing.AddSkill("Go")
		repo.On("GetByUserID", mock.Anything, "u1").Return(existing, nil)
		repo.On("Save", mock.Anything, "u1", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			patch := args.Get(2).(*domain.ProfilePatch)
			assert.Equal(t, []string{"Go", "SQL"}, *patch.Skills)
		})

		profile, err := uc.AddSkill(authedCtx("u1"), "SQL")
		assert.NoError(t, err)
		assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)
		repo.AssertExpectations(t)
	})

	t.Run("Should not write on a duplicate skill", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		existing := domain.NewDefaultProfile()
		existing.AddSkill("Go")
		repo.On("GetByUserID", mock.Anything, "u1").Return(existing, nil)

		profile, err := uc.AddSkill(authedCtx("u1"), "Go")
		assert.NoError(t, err)
		assert.Equal(t, []string{"Go"}, profile.Skills)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject an out-of-range removal", func(t *testing.T) {
		repo := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(repo, validator.New())

		repo.On("GetByUserID", mock.Anything, "u1").Return(domain.NewDefaultProfile(), nil)

		_, err := uc.RemoveSkillAt(authedCtx("u1"), 0)
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	})
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAvatarUpload(t *testing.T) {
	t.Run("Should upload a valid image and point photo_url at it", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		blobs := new(MockBlobStore)
		uc := usecase.NewAvatarUsecase(userRepo, blobs)

		data := pngBytes(t)
		blobs.On("PutAvatar", mock.Anything, "u1", data, "image/png").Return("https://cdn.example.com/users/u1/avatar", nil)
		userRepo.On("UpdatePhotoURL", mock.Anything, "u1", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			url := args.Get(2).(*string)
			assert.Equal(t, "https://cdn.example.com/users/u1/avatar", *url)
		})

		url, err := uc.Upload(authedCtx("u1"), data, "image/png")
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/users/u1/avatar", url)
		blobs.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})

	t.Run("Should reject oversized images before any network call", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		blobs := new(MockBlobStore)
		uc := usecase.NewAvatarUsecase(userRepo, blobs)

		big := make([]byte, 3<<20)
		_, err := uc.Upload(authedCtx("u1"), big, "image/jpeg")
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidImage))
		blobs.AssertNotCalled(t, "PutAvatar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		userRepo.AssertNotCalled(t, "UpdatePhotoURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject disallowed content types", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		blobs := new(MockBlobStore)
		uc := usecase.NewAvatarUsecase(userRepo, blobs)

		_, err := uc.Upload(authedCtx("u1"), []byte("GIF89a..."), "image/gif")
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidImage))
		blobs.AssertNotCalled(t, "PutAvatar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should retry the record update once after a failure", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		blobs := new(MockBlobStore)
		uc := usecase.NewAvatarUsecase(userRepo, blobs)

		data := pngBytes(t)
		blobs.On("PutAvatar", mock.Anything, "u1", data, "image/png").Return("https://cdn.example.com/users/u1/avatar", nil)
		userRepo.On("UpdatePhotoURL", mock.Anything, "u1", mock.Anything).Return(errors.New("transient")).Once()
		userRepo.On("UpdatePhotoURL", mock.Anything, "u1", mock.Anything).Return(nil).Once()

		url, err := uc.Upload(authedCtx("u1"), data, "image/png")
		assert.NoError(t, err)
		assert.NotEmpty(t, url)
		userRepo.AssertNumberOfCalls(t, "UpdatePhotoURL", 2)
	})

	t.Run("Should clear photo_url on removal", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		blobs := new(MockBlobStore)
		uc := usecase.NewAvatarUsecase(userRepo, blobs)

		blobs.On("DeleteAvatar", mock.Anything, "u1").Return(nil)
		userRepo.On("UpdatePhotoURL", mock.Anything, "u1", (*string)(nil)).Return(nil)

		err := uc.Remove(authedCtx("u1"))
		assert.NoError(t, err)
		blobs.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})
}
