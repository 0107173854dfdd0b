package services

import (
	"context"
	"fmt"

	"github.com/courtside/league-system/models"
	"github.com/courtside/league-system/repositories"
)

type AvailabilityService interface {
	Set(ctx context.Context, playerID int, windows []string) (*models.Availability, error)
	Get(ctx context.Context, playerID int) (*models.Availability, error)
	IsCompatible(ctx context.Context, playerID int, desired *string) (bool, error)
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
}

func NewAvailabilityService(availabilityRepo repositories.AvailabilityRepository) AvailabilityService {
	return &availabilityService{availabilityRepo: availabilityRepo}
}

// Set replaces the player's window set entirely.
func (s *availabilityService) Set(ctx context.Context, playerID int, windows []string) (*models.Availability, error) {
	if windows == nil {
		windows = []string{}
	}
	availability := &models.Availability{PlayerID: playerID, Windows: windows}
	if err := s.availabilityRepo.Upsert(ctx, nil, availability); err != nil {
		return nil, fmt.Errorf("failed to set availability: %w", err)
	}
	return availability, nil
}

func (s *availabilityService) Get(ctx context.Context, playerID int) (*models.Availability, error) {
	return s.availabilityRepo.GetByPlayer(ctx, playerID)
}

// IsCompatible checks a single player against a desired window. The
// scheduler does not call this per-candidate; it preloads the pool's
// records once instead (see schedule_service).
func (s *availabilityService) IsCompatible(ctx context.Context, playerID int, desired *string) (bool, error) {
	availability, err := s.availabilityRepo.GetByPlayer(ctx, playerID)
	if err != nil {
		return false, err
	}
	return availability.IsCompatible(desired), nil
}
