package repository

import (
	"context"

	"github.com/user/skillgen-service/internal/entity"
)

// ProjectRepository is the read-only view of the platform's project store.
type ProjectRepository interface {
	// FindOwned returns the project only if it belongs to userID, ErrNotFound otherwise.
	FindOwned(ctx context.Context, projectID, userID string) (*entity.Project, error)
}
