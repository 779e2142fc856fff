package postgres

import (
	"context"
	"errors"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation       = "23505"
	pgInsufficientPrivilege = "42501"
)

// mapPgError translates driver errors into the application taxonomy. A
// privilege rejection is reported as permission denied so the caller can show
// remediation guidance instead of a generic failure; stores without a
// structured code fall back to the message heuristic.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgInsufficientPrivilege {
			return apperror.PermissionDenied("Database denied access. Check the access rules for this environment.", err)
		}
	}
	if apperror.LooksLikePermissionDenied(err) {
		return apperror.PermissionDenied("Database denied access. Check the access rules for this environment.", err)
	}
	return apperror.Internal(err)
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, display_name, photo_url, role, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.DisplayName, user.PhotoURL, user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.AlreadyExists("User record already exists")
		}
		return mapPgError(err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, display_name, photo_url, role, created_at, updated_at
              FROM users WHERE id = $1`
	var user domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.PhotoURL, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgError(err)
	}
	return &user, nil
}

func (r *userRepo) UpdateDisplayName(ctx context.Context, id, name string) error {
	query := `UPDATE users SET display_name = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, name)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (r *userRepo) UpdatePhotoURL(ctx context.Context, id string, url *string) error {
	query := `UPDATE users SET photo_url = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}
