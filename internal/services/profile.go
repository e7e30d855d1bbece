package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/repos"
	"ideaboard-backend/internal/types"
)

type ProfileService interface {
	// Activate creates the profile on first use and marks it last active.
	Activate(ctx context.Context, name string) (*types.Profile, error)
	List(ctx context.Context) ([]*types.Profile, error)
	Active(ctx context.Context) (*types.Profile, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	return &profileService{
		db:          db,
		log:         log.With("service", "ProfileService"),
		profileRepo: profileRepo,
	}
}

func (s *profileService) Activate(ctx context.Context, name string) (*types.Profile, error) {
	key := types.ProfileKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: profile name required", errs.ErrInvalidArgument)
	}

	now := time.Now()
	profile := &types.Profile{
		Key:       key,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profileRepo.Upsert(ctx, nil, profile); err != nil {
		return nil, err
	}
	if err := s.profileRepo.SetLastActive(ctx, nil, key); err != nil {
		return nil, err
	}

	stored, err := s.profileRepo.GetByKey(ctx, nil, key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errs.ErrNotFound
	}
	s.log.Info("Profile activated", "key", key)
	return stored, nil
}

func (s *profileService) List(ctx context.Context) ([]*types.Profile, error) {
	return s.profileRepo.List(ctx, nil)
}

func (s *profileService) Active(ctx context.Context) (*types.Profile, error) {
	return s.profileRepo.GetLastActive(ctx, nil)
}
