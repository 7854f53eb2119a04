package service

import (
	"context"
	"errors"
	"fmt"

	"mini-mart/internal/domain"
	"mini-mart/internal/initdata"
	"mini-mart/internal/repository"
)

var ErrMissingUser = errors.New("init data carries no user")

// ProfileService defines the interface for buyer profile operations
type ProfileService interface {
	Verify(payload string) (*initdata.Result, error)
	Me(ctx context.Context, payload string) (*domain.Profile, error)
	Update(ctx context.Context, payload string, patch domain.ProfilePatch) error
	SavePhone(ctx context.Context, buyerID int64, phone string) error
	SaveLocation(ctx context.Context, buyerID int64, geo domain.Geo) error
	Get(ctx context.Context, buyerID int64) (*domain.Profile, error)
	List(ctx context.Context, query string, page, pageSize int) ([]*domain.Profile, int, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	verifier InitDataVerifier
}

// NewProfileService creates a new instance of ProfileService
func NewProfileService(profiles repository.ProfileRepository, verifier InitDataVerifier) ProfileService {
	return &profileService{profiles: profiles, verifier: verifier}
}

// Verify validates a launch payload and returns its claims
func (s *profileService) Verify(payload string) (*initdata.Result, error) {
	auth, err := s.verifier.Verify(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	return auth, nil
}

func (s *profileService) buyer(payload string) (*initdata.Result, error) {
	auth, err := s.Verify(payload)
	if err != nil {
		return nil, err
	}
	if auth.BuyerID() == nil {
		return nil, ErrMissingUser
	}
	return auth, nil
}

// Me records the buyer's Telegram identity and returns the stored profile
func (s *profileService) Me(ctx context.Context, payload string) (*domain.Profile, error) {
	auth, err := s.buyer(payload)
	if err != nil {
		return nil, err
	}
	id := auth.User.ID

	if err := s.profiles.Touch(ctx, id, auth.User.DisplayName(), auth.User.Username); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = auth.User.DisplayName()
	}
	return profile, nil
}

// Update merges the patch into the buyer's profile
func (s *profileService) Update(ctx context.Context, payload string, patch domain.ProfilePatch) error {
	auth, err := s.buyer(payload)
	if err != nil {
		return err
	}
	return s.profiles.Merge(ctx, auth.User.ID, patch)
}

func (s *profileService) SavePhone(ctx context.Context, buyerID int64, phone string) error {
	return s.profiles.SetPhone(ctx, buyerID, phone)
}

func (s *profileService) SaveLocation(ctx context.Context, buyerID int64, geo domain.Geo) error {
	return s.profiles.SetGeo(ctx, buyerID, geo)
}

func (s *profileService) Get(ctx context.Context, buyerID int64) (*domain.Profile, error) {
	return s.profiles.Get(ctx, buyerID)
}

func (s *profileService) List(ctx context.Context, query string, page, pageSize int) ([]*domain.Profile, int, error) {
	if page < 1 {
		page = 1
	}
	return s.profiles.List(ctx, query, page, pageSize)
}
