package models

import (
	"fmt"
	"time"

	apperrors "github.com/julianstephens/moodlit/internal/errors"
)

// Profile is the per-user account document. Only account creation and the
// profile screens touch it.
type Profile struct {
	UserID          string            `json:"user_id" validate:"required"`
	Email           string            `json:"email,omitempty" validate:"omitempty,email"`
	Name            string            `json:"name,omitempty" validate:"max=120"`
	Age             int               `json:"age,omitempty" validate:"gte=0,lte=150"`
	Gender          string            `json:"gender,omitempty" validate:"max=60"`
	ProfileComplete bool              `json:"profile_complete"`
	Questionnaire   map[string]string `json:"questionnaire,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
}

// Validate checks the profile's input fields.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return apperrors.New(apperrors.ErrValidation, "validate profile", err)
	}
	return nil
}

// ProfileFields carries the editable profile fields
type ProfileFields struct {
	Name   string `validate:"required,max=120"`
	Age    int    `validate:"gte=0,lte=150"`
	Gender string `validate:"max=60"`
}

// Validate checks the editable fields.
func (f ProfileFields) Validate() error {
	if err := validate.Struct(f); err != nil {
		return apperrors.New(apperrors.ErrValidation, "validate profile fields", fmt.Errorf("%w", err))
	}
	return nil
}
