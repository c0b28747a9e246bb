// Package profile manages the per-user account document written at sign-up
// and edited from the profile screens.
package profile

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

// Identity yields the signed-in user.
type Identity interface {
	CurrentUserID() (string, bool)
}

// Gate reports connectivity.
type Gate interface {
	Online() bool
}

type Service struct {
	repo     storage.ProfileRepository
	identity Identity
	gate     Gate
	device   Device
	now      func() time.Time
}

func NewService(repo storage.ProfileRepository, identity Identity, gate Gate, device Device, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, identity: identity, gate: gate, device: device, now: now}
}

func (s *Service) preflight(op string) (string, error) {
	if !s.gate.Online() {
		return "", apperrors.New(apperrors.ErrNetworkUnavailable, op, nil)
	}
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		return "", apperrors.New(apperrors.ErrAuthRequired, op, nil)
	}
	return userID, nil
}

// Get returns the signed-in user's profile.
func (s *Service) Get(ctx context.Context) (models.Profile, error) {
	const op = "get profile"
	userID, err := s.preflight(op)
	if err != nil {
		return models.Profile{}, err
	}
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Profile{}, err
		}
		return models.Profile{}, apperrors.New(apperrors.ErrRemoteRead, op, err)
	}
	return p, nil
}

// Create writes a fresh, incomplete profile. Questionnaire answers from the
// device file are merged in when present.
func (s *Service) Create(ctx context.Context, email string) (models.Profile, error) {
	const op = "create profile"
	userID, err := s.preflight(op)
	if err != nil {
		return models.Profile{}, err
	}

	p := models.Profile{
		UserID:    userID,
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	p.Questionnaire = s.answers()
	if err := p.Validate(); err != nil {
		return models.Profile{}, err
	}
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return models.Profile{}, apperrors.New(apperrors.ErrRemoteWrite, op, err)
	}
	logger.Info("Profile created", "user", userID, "questionnaire", len(p.Questionnaire))
	return p, nil
}

// answers copies the device questionnaire so profiles never alias it.
func (s *Service) answers() map[string]string {
	if len(s.device.Questionnaire) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.device.Questionnaire))
	for k, v := range s.device.Questionnaire {
		out[k] = v
	}
	return out
}

// Complete fills in the editable fields, creating the profile if needed,
// and marks it complete.
func (s *Service) Complete(ctx context.Context, fields models.ProfileFields) (models.Profile, error) {
	return s.apply(ctx, "complete profile", fields, true)
}

// Update changes the editable fields of an existing profile.
func (s *Service) Update(ctx context.Context, fields models.ProfileFields) (models.Profile, error) {
	return s.apply(ctx, "update profile", fields, false)
}

func (s *Service) apply(ctx context.Context, op string, fields models.ProfileFields, create bool) (models.Profile, error) {
	userID, err := s.preflight(op)
	if err != nil {
		return models.Profile{}, err
	}
	if err := fields.Validate(); err != nil {
		return models.Profile{}, err
	}

	p, err := s.repo.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound) && create:
		p = models.Profile{UserID: userID, CreatedAt: s.now().UTC(), Questionnaire: s.answers()}
	case errors.Is(err, storage.ErrNotFound):
		return models.Profile{}, err
	case err != nil:
		return models.Profile{}, apperrors.New(apperrors.ErrRemoteRead, op, err)
	}

	now := s.now().UTC()
	p.Name = fields.Name
	p.Age = fields.Age
	p.Gender = fields.Gender
	p.ProfileComplete = true
	p.UpdatedAt = &now

	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return models.Profile{}, apperrors.New(apperrors.ErrRemoteWrite, op, err)
	}
	return p, nil
}
