package firestore

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pfirestore "github.com/foodchainx/api/internal/platform/firestore"
	"github.com/foodchainx/api/internal/repositories"
)

// HealthRepository probes Firestore connectivity for readiness checks.
type HealthRepository struct {
	provider *pfirestore.Provider
}

// NewHealthRepository constructs a Firestore-backed health repository.
func NewHealthRepository(provider *pfirestore.Provider) (*HealthRepository, error) {
	if provider == nil {
		return nil, errors.New("health repository requires firestore provider")
	}
	return &HealthRepository{provider: provider}, nil
}

// Ping reads a sentinel document. A missing document still proves the
// round trip, so NotFound counts as healthy.
func (r *HealthRepository) Ping(ctx context.Context) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection("healthz").Doc("ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return pfirestore.WrapError("healthz.ping", err)
	}
	return nil
}

// Ensure interface compliance.
var _ repositories.HealthRepository = (*HealthRepository)(nil)
