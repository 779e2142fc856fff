package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT headline, bio, visibility, experience, education, projects,
                     certifications, skills, links, created_at, updated_at
              FROM profiles WHERE user_id = $1`

	var (
		p             domain.Profile
		experience    []byte
		education     []byte
		projects      []byte
		certification []byte
		links         []byte
		skills        []string
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.Headline, &p.Bio, &p.Visibility,
		&experience, &education, &projects, &certification,
		pq.Array(&skills), &links,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgError(err)
	}

	if err := unmarshalColumn(experience, &p.Experience); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := unmarshalColumn(education, &p.Education); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := unmarshalColumn(projects, &p.Projects); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := unmarshalColumn(certification, &p.Certifications); err != nil {
		return nil, apperror.Internal(err)
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &p.Links); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	if skills == nil {
		skills = []string{}
	}
	p.Skills = skills
	ensureCollections(&p)

	return &p, nil
}

// CreateDefault inserts the empty profile shape. ON CONFLICT DO NOTHING keeps
// it idempotent under concurrent bootstrap.
func (r *profileRepo) CreateDefault(ctx context.Context, userID string) error {
	query := `INSERT INTO profiles (user_id, visibility, experience, education, projects,
                                    certifications, skills, links, created_at, updated_at)
              VALUES ($1, $2, '[]', '[]', '[]', '[]', $3, '{}', NOW(), NOW())
              ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, userID, string(domain.VisibilityPublic), pq.Array([]string{}))
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// Save builds the SET list from the fields the patch actually carries. Absent
// fields never appear in the statement, so stored values survive untouched;
// present collections replace wholesale.
func (r *profileRepo) Save(ctx context.Context, userID string, patch *domain.ProfilePatch) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{userID}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Headline != nil {
		sets = append(sets, "headline = "+arg(emptyToNull(*patch.Headline)))
	}
	if patch.Bio != nil {
		sets = append(sets, "bio = "+arg(emptyToNull(*patch.Bio)))
	}
	if patch.Visibility != nil {
		sets = append(sets, "visibility = "+arg(string(*patch.Visibility)))
	}
	if patch.Experience != nil {
		b, err := json.Marshal(*patch.Experience)
		if err != nil {
			return apperror.Internal(err)
		}
		sets = append(sets, "experience = "+arg(b))
	}
	if patch.Education != nil {
		b, err := json.Marshal(*patch.Education)
		if err != nil {
			return apperror.Internal(err)
		}
		sets = append(sets, "education = "+arg(b))
	}
	if patch.Projects != nil {
		b, err := json.Marshal(*patch.Projects)
		if err != nil {
			return apperror.Internal(err)
		}
		sets = append(sets, "projects = "+arg(b))
	}
	if patch.Certifications != nil {
		b, err := json.Marshal(*patch.Certifications)
		if err != nil {
			return apperror.Internal(err)
		}
		sets = append(sets, "certifications = "+arg(b))
	}
	if patch.Skills != nil {
		sets = append(sets, "skills = "+arg(pq.Array(*patch.Skills)))
	}
	if patch.Links != nil {
		b, err := json.Marshal(*patch.Links)
		if err != nil {
			return apperror.Internal(err)
		}
		sets = append(sets, "links = "+arg(b))
	}

	query := "UPDATE profiles SET " + joinSets(sets) + " WHERE user_id = $1"
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}

	// The record may be missing when bootstrap was incomplete; create it and
	// apply the patch again so the save still lands.
	if tag.RowsAffected() == 0 {
		if err := r.CreateDefault(ctx, userID); err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx, query, args...); err != nil {
			return mapPgError(err)
		}
	}
	return nil
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

// emptyToNull stores cleared text fields as NULL rather than empty strings.
func emptyToNull(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func unmarshalColumn[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// ensureCollections keeps JSON responses rendering [] instead of null.
func ensureCollections(p *domain.Profile) {
	if p.Experience == nil {
		p.Experience = []domain.ExperienceItem{}
	}
	if p.Education == nil {
		p.Education = []domain.EducationItem{}
	}
	if p.Projects == nil {
		p.Projects = []domain.ProjectItem{}
	}
	if p.Certifications == nil {
		p.Certifications = []domain.CertificationItem{}
	}
}
