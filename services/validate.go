package services

import (
	"fmt"
	"math"

	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/models"
)

// validateProject checks the caller-supplied project fields. Legacy
// spellings are checked under the same rules as canonical ones. On create
// a name is required.
func validateProject(input models.RawRecord, creating bool) error {
	if creating && !input.Has(models.ProjectName...) {
		return errs.NewMissingRequiredFieldError(models.ProjectName.Canonical())
	}

	for _, field := range []models.Aliases{models.ProjectName, models.ProjectDescription, models.ProjectCategory} {
		if err := eachPresent(input, field, requireText); err != nil {
			return err
		}
	}

	for _, field := range []models.Aliases{
		models.ProjectAttachmentCount,
		models.ProjectTotalTaskCount,
		models.ProjectCompletedTaskCount,
	} {
		if err := eachPresent(input, field, requireRange(0, models.MaxWholeNumber)); err != nil {
			return err
		}
	}

	if err := eachPresent(input, models.ProjectProgression, requireRange(0, 100)); err != nil {
		return err
	}
	if err := eachPresent(input, models.ProjectDaysLeft, requireRange(-models.MaxWholeNumber, models.MaxWholeNumber)); err != nil {
		return err
	}
	if err := eachPresent(input, models.ProjectMembers, requireList); err != nil {
		return err
	}
	return nil
}

// validateCommentContent requires a non-blank content string.
func validateCommentContent(input models.RawRecord) (string, error) {
	key := models.CommentContent.Canonical()
	if !input.Has(key) {
		return "", errs.NewMissingRequiredFieldError(key)
	}
	content, ok := models.ToText(input[key])
	if !ok {
		return "", errs.NewInvalidFieldError(key, "must be a non-empty string")
	}
	return content, nil
}

// validateLineNumber returns nil when no line number was supplied.
func validateLineNumber(input models.RawRecord) (*int, error) {
	key := models.CommentLineNumber.Canonical()
	if v, ok := input[key]; !ok || v == nil {
		return nil, nil
	}
	n, ok := models.ToNumber(input[key])
	if !ok || n != math.Trunc(n) {
		return nil, errs.NewInvalidFieldError(key, "must be a whole number")
	}
	if n > models.MaxWholeNumber {
		return nil, errs.NewInvalidFieldError(key, fmt.Sprintf("must not exceed %d", models.MaxWholeNumber))
	}
	line := models.LineNumber(n)
	if line == nil {
		return nil, errs.NewInvalidFieldError(key, "must be positive")
	}
	return line, nil
}

type check func(key string, value any) error

func eachPresent(input models.RawRecord, field models.Aliases, fn check) error {
	for _, key := range field {
		if value, ok := input[key]; ok {
			if err := fn(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func requireText(key string, value any) error {
	if _, ok := value.(string); !ok {
		return errs.NewInvalidFieldError(key, "must be a string")
	}
	if _, ok := models.ToText(value); !ok {
		return errs.NewInvalidFieldError(key, "must not be empty")
	}
	return nil
}

// requireRange bounds a number to [min, max].
func requireRange(min, max float64) check {
	return func(key string, value any) error {
		n, ok := models.ToNumber(value)
		if !ok {
			return errs.NewInvalidFieldError(key, "must be a number")
		}
		switch {
		case n < 0 && min == 0:
			return errs.NewInvalidFieldError(key, "must not be negative")
		case n < min || n > max:
			return errs.NewInvalidFieldError(key, fmt.Sprintf("must be between %g and %g", min, max))
		}
		return nil
	}
}

func requireList(key string, value any) error {
	if _, ok := models.ToList(value); !ok {
		return errs.NewInvalidFieldError(key, "must be a list")
	}
	return nil
}
