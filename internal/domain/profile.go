package domain

import (
	"context"
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return true
	}
	return false
}

type ExperienceItem struct {
	Company     string `json:"company" validate:"required"`
	Role        string `json:"role" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

func (e *ExperienceItem) Normalize() {
	e.Company = strings.TrimSpace(e.Company)
	e.Role = strings.TrimSpace(e.Role)
	e.StartDate = strings.TrimSpace(e.StartDate)
	e.EndDate = strings.TrimSpace(e.EndDate)
	e.Description = strings.TrimSpace(e.Description)
	// current=true means open-ended; the stored end date is not displayed
	if e.Current {
		e.EndDate = ""
	}
}

type EducationItem struct {
	School    string `json:"school" validate:"required"`
	Degree    string `json:"degree" validate:"required"`
	Field     string `json:"field,omitempty"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date,omitempty"`
}

func (e *EducationItem) Normalize() {
	e.School = strings.TrimSpace(e.School)
	e.Degree = strings.TrimSpace(e.Degree)
	e.Field = strings.TrimSpace(e.Field)
	e.StartDate = strings.TrimSpace(e.StartDate)
	e.EndDate = strings.TrimSpace(e.EndDate)
}

type ProjectItem struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty" validate:"omitempty,url"`
	TechStack   []string `json:"tech_stack,omitempty"`
}

func (p *ProjectItem) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Link = strings.TrimSpace(p.Link)
	// tech_stack is omitted entirely when nothing survives filtering
	var stack []string
	for _, t := range p.TechStack {
		if t = strings.TrimSpace(t); t != "" {
			stack = append(stack, t)
		}
	}
	p.TechStack = stack
}

type CertificationItem struct {
	Name   string `json:"name" validate:"required"`
	Issuer string `json:"issuer" validate:"required"`
	Date   string `json:"date" validate:"required"`
	Link   string `json:"link,omitempty" validate:"omitempty,url"`
}

func (c *CertificationItem) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Issuer = strings.TrimSpace(c.Issuer)
	c.Date = strings.TrimSpace(c.Date)
	c.Link = strings.TrimSpace(c.Link)
}

type Links struct {
	Github    string `json:"github,omitempty" validate:"omitempty,url"`
	Linkedin  string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Portfolio string `json:"portfolio,omitempty" validate:"omitempty,url"`
}

func (l *Links) Normalize() {
	l.Github = strings.TrimSpace(l.Github)
	l.Linkedin = strings.TrimSpace(l.Linkedin)
	l.Portfolio = strings.TrimSpace(l.Portfolio)
}

func (l Links) Empty() bool {
	return l.Github == "" && l.Linkedin == "" && l.Portfolio == ""
}

// Profile is the professional-profile document, one per identity, keyed by
// identity id. Strictly 1:1 with User but a distinct record. Mutated only by
// its owner through Save.
type Profile struct {
	Headline       *string             `json:"headline"`
	Bio            *string             `json:"bio"`
	Visibility     Visibility          `json:"visibility"`
	Experience     []ExperienceItem    `json:"experience"`
	Education      []EducationItem     `json:"education"`
	Projects       []ProjectItem       `json:"projects"`
	Certifications []CertificationItem `json:"certifications"`
	Skills         []string            `json:"skills"`
	Links          Links               `json:"links"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// NewDefaultProfile is the shape created once at bootstrap.
func NewDefaultProfile() *Profile {
	return &Profile{
		Visibility:     VisibilityPublic,
		Experience:     []ExperienceItem{},
		Education:      []EducationItem{},
		Projects:       []ProjectItem{},
		Certifications: []CertificationItem{},
		Skills:         []string{},
	}
}

// AddSkill appends a skill preserving insertion order. Duplicates (exact
// match after trim, case-sensitive) and blanks are rejected as a no-op.
func (p *Profile) AddSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return false
	}
	for _, s := range p.Skills {
		if s == skill {
			return false
		}
	}
	p.Skills = append(p.Skills, skill)
	return true
}

// RemoveSkillAt removes by position. Out-of-range is a no-op.
func (p *Profile) RemoveSkillAt(i int) bool {
	if i < 0 || i >= len(p.Skills) {
		return false
	}
	p.Skills = append(p.Skills[:i], p.Skills[i+1:]...)
	return true
}

func (p *Profile) AddExperience(item ExperienceItem) {
	p.Experience = append(p.Experience, item)
}

func (p *Profile) ReplaceExperienceAt(i int, item ExperienceItem) bool {
	if i < 0 || i >= len(p.Experience) {
		return false
	}
	p.Experience[i] = item
	return true
}

func (p *Profile) RemoveExperienceAt(i int) bool {
	if i < 0 || i >= len(p.Experience) {
		return false
	}
	p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
	return true
}

func (p *Profile) AddEducation(item EducationItem) {
	p.Education = append(p.Education, item)
}

func (p *Profile) ReplaceEducationAt(i int, item EducationItem) bool {
	if i < 0 || i >= len(p.Education) {
		return false
	}
	p.Education[i] = item
	return true
}

func (p *Profile) RemoveEducationAt(i int) bool {
	if i < 0 || i >= len(p.Education) {
		return false
	}
	p.Education = append(p.Education[:i], p.Education[i+1:]...)
	return true
}

func (p *Profile) AddProject(item ProjectItem) {
	p.Projects = append(p.Projects, item)
}

func (p *Profile) ReplaceProjectAt(i int, item ProjectItem) bool {
	if i < 0 || i >= len(p.Projects) {
		return false
	}
	p.Projects[i] = item
	return true
}

func (p *Profile) RemoveProjectAt(i int) bool {
	if i < 0 || i >= len(p.Projects) {
		return false
	}
	p.Projects = append(p.Projects[:i], p.Projects[i+1:]...)
	return true
}

func (p *Profile) AddCertification(item CertificationItem) {
	p.Certifications = append(p.Certifications, item)
}

func (p *Profile) ReplaceCertificationAt(i int, item CertificationItem) bool {
	if i < 0 || i >= len(p.Certifications) {
		return false
	}
	p.Certifications[i] = item
	return true
}

func (p *Profile) RemoveCertificationAt(i int) bool {
	if i < 0 || i >= len(p.Certifications) {
		return false
	}
	p.Certifications = append(p.Certifications[:i], p.Certifications[i+1:]...)
	return true
}

// CanView decides whether viewer may read owner's profile. The owner always
// may, regardless of visibility. A non-owner may iff visibility != private;
// unlisted is public-equivalent at this layer (it only suppresses listing,
// and no listing feature exists). An absent profile is viewable-but-empty
// for the owner and indistinguishable from private for anyone else.
func CanView(viewerID, ownerID string, profile *Profile) bool {
	if viewerID != "" && viewerID == ownerID {
		return true
	}
	if profile == nil {
		return false
	}
	return profile.Visibility != VisibilityPrivate
}

// ProfilePatch is a partial update. A nil field is absent and leaves storage
// untouched; a present field fully replaces the stored value (collections
// wholesale, never item-merged). updated_at is always refreshed on save.
type ProfilePatch struct {
	Headline       *string              `json:"headline"`
	Bio            *string              `json:"bio"`
	Visibility     *Visibility          `json:"visibility"`
	Experience     *[]ExperienceItem    `json:"experience"`
	Education      *[]EducationItem     `json:"education"`
	Projects       *[]ProjectItem       `json:"projects"`
	Certifications *[]CertificationItem `json:"certifications"`
	Skills         *[]string            `json:"skills"`
	Links          *Links               `json:"links"`
}

// Normalize trims free text, de-duplicates skills, cleans link sub-fields,
// and drops an all-empty links object from the patch. Must run before
// validation and before the write.
func (p *ProfilePatch) Normalize() {
	if p.Headline != nil {
		h := strings.TrimSpace(*p.Headline)
		p.Headline = &h
	}
	if p.Bio != nil {
		b := strings.TrimSpace(*p.Bio)
		p.Bio = &b
	}
	if p.Experience != nil {
		for i := range *p.Experience {
			(*p.Experience)[i].Normalize()
		}
	}
	if p.Education != nil {
		for i := range *p.Education {
			(*p.Education)[i].Normalize()
		}
	}
	if p.Projects != nil {
		for i := range *p.Projects {
			(*p.Projects)[i].Normalize()
		}
	}
	if p.Certifications != nil {
		for i := range *p.Certifications {
			(*p.Certifications)[i].Normalize()
		}
	}
	if p.Skills != nil {
		deduped := make([]string, 0, len(*p.Skills))
		seen := make(map[string]bool, len(*p.Skills))
		for _, s := range *p.Skills {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			deduped = append(deduped, s)
		}
		*p.Skills = deduped
	}
	if p.Links != nil {
		p.Links.Normalize()
		// An all-empty links object is omitted from the write entirely, so
		// previously stored sub-fields survive. A single empty sub-field
		// does not unset a stored value either.
		if p.Links.Empty() {
			p.Links = nil
		}
	}
}

type ProfileRepository interface {
	// GetByUserID returns (nil, nil) when no record exists.
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	// CreateDefault creates the empty profile record. Idempotent.
	CreateDefault(ctx context.Context, userID string) error
	// Save applies the patch with field-level replace-if-present semantics
	// and refreshes updated_at.
	Save(ctx context.Context, userID string, patch *ProfilePatch) error
}

type ProfileUsecase interface {
	// GetOwn returns the caller's profile; an absent record is presented as
	// the empty default.
	GetOwn(ctx context.Context) (*Profile, error)
	// View returns ownerID's profile after the visibility gate. Private and
	// absent profiles are both NotFound for non-owners.
	View(ctx context.Context, ownerID string) (*Profile, error)
	Save(ctx context.Context, patch *ProfilePatch) error
	AddSkill(ctx context.Context, skill string) (*Profile, error)
	RemoveSkillAt(ctx context.Context, index int) (*Profile, error)
	AddExperience(ctx context.Context, item ExperienceItem) (*Profile, error)
}
