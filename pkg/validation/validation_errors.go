package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels.
var FieldLabels = map[string]string{
	// ExperienceItem
	"Company":   "Company",
	"Role":      "Role",
	"StartDate": "Start date",
	"EndDate":   "End date",

	// EducationItem
	"School": "School",
	"Degree": "Degree",
	"Field":  "Field of study",

	// ProjectItem
	"Name":        "Name",
	"Description": "Description",
	"Link":        "Link",
	"TechStack":   "Tech stack",

	// CertificationItem
	"Issuer": "Issuer",
	"Date":   "Date",

	// Links
	"Github":    "GitHub URL",
	"Linkedin":  "LinkedIn URL",
	"Portfolio": "Portfolio URL",

	// Patch
	"Headline":   "Headline",
	"Bio":        "Bio",
	"Visibility": "Visibility",
	"Skills":     "Skills",
}

func label(field string) string {
	if l, ok := FieldLabels[field]; ok {
		return l
	}
	return field
}

// Format turns validator errors into a single readable message; other errors
// pass through unchanged.
func Format(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", label(fe.Field())))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", label(fe.Field())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", label(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", label(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}
