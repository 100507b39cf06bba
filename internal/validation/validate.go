package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"Ticketing/internal/domain"
)

// Field length bounds, counted in runes after sanitization.
const (
	TitleMin       = 3
	TitleMax       = 200
	DescriptionMin = 10
	DescriptionMax = 2000
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize trims surrounding whitespace and collapses internal whitespace
// runs to a single space. Applied to title and description before validation
// and before storage.
func Sanitize(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// TicketInput is the set of fields subject to validation. A nil field was not
// supplied by the caller; in update mode it is then skipped entirely.
type TicketInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
}

// Validate checks in against the field rules and returns every violation as a
// human-readable message, in field order. An empty slice means valid.
//
// In create mode (isUpdate=false) title and description are mandatory. In
// update mode each field is validated only if present. Length checks fire
// only once the required check passes. Priority and status must match their
// enumerated values exactly; callers lower-case them first.
func Validate(in TicketInput, isUpdate bool) []string {
	var errs []string

	if !isUpdate || in.Title != nil {
		switch {
		case in.Title == nil || *in.Title == "":
			errs = append(errs, "Title is required")
		case utf8.RuneCountInString(*in.Title) < TitleMin:
			errs = append(errs, "Title must be at least 3 characters long")
		case utf8.RuneCountInString(*in.Title) > TitleMax:
			errs = append(errs, "Title must not exceed 200 characters")
		}
	}

	if !isUpdate || in.Description != nil {
		switch {
		case in.Description == nil || *in.Description == "":
			errs = append(errs, "Description is required")
		case utf8.RuneCountInString(*in.Description) < DescriptionMin:
			errs = append(errs, "Description must be at least 10 characters long")
		case utf8.RuneCountInString(*in.Description) > DescriptionMax:
			errs = append(errs, "Description must not exceed 2000 characters")
		}
	}

	if in.Priority != nil && !domain.ValidPriority(*in.Priority) {
		errs = append(errs, "Priority must be low, medium, or high")
	}

	if in.Status != nil && !domain.ValidStatus(*in.Status) {
		errs = append(errs, "Status must be open, inprogress, or closed")
	}

	return errs
}
