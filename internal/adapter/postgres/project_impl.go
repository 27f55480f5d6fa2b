package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
)

// ProjectRepoImpl provides a concrete implementation for the ProjectRepository interface using PostgreSQL.
type ProjectRepoImpl struct {
	db DB
}

// NewProjectRepo creates a new instance of ProjectRepoImpl.
func NewProjectRepo(db DB) *ProjectRepoImpl {
	return &ProjectRepoImpl{db: db}
}

var _ repository.ProjectRepository = (*ProjectRepoImpl)(nil)

// FindOwned retrieves a project if and only if userID owns it.
func (r *ProjectRepoImpl) FindOwned(ctx context.Context, projectID, userID string) (*entity.Project, error) {
	query := `
		SELECT id, user_id, name, COALESCE(description, ''), created_at
		FROM projects
		WHERE id = $1 AND user_id = $2;
	`
	var p entity.Project
	err := r.db.QueryRow(ctx, query, projectID, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}
	return &p, nil
}
