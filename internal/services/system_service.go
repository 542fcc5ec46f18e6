package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodchainx/api/internal/repositories"
)

// ErrSystemNotReady indicates a backing dependency failed its readiness probe.
var ErrSystemNotReady = errors.New("system: not ready")

// SystemServiceDeps lists collaborators required by NewSystemService.
type SystemServiceDeps struct {
	Health repositories.HealthRepository
}

type systemService struct {
	health repositories.HealthRepository
}

// NewSystemService validates dependencies and builds the system service.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, errors.New("system service: health repository is required")
	}
	return &systemService{health: deps.Health}, nil
}

func (s *systemService) Readiness(ctx context.Context) error {
	if err := s.health.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSystemNotReady, err)
	}
	return nil
}
