package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
)

// SkillRepoImpl stores skills as rows of the `prompts` table with type 'skill'.
type SkillRepoImpl struct {
	db DB
}

// NewSkillRepo creates a new instance of SkillRepoImpl.
func NewSkillRepo(db DB) *SkillRepoImpl {
	return &SkillRepoImpl{db: db}
}

var _ repository.SkillRepository = (*SkillRepoImpl)(nil)

// CreateBatch inserts all drafts within a single transaction.
func (r *SkillRepoImpl) CreateBatch(ctx context.Context, projectID string, drafts []entity.SkillDraft) ([]entity.Skill, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		INSERT INTO prompts (id, project_id, name, description, content, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	createdAt := time.Now().UTC()
	skills := make([]entity.Skill, 0, len(drafts))
	for _, d := range drafts {
		s := entity.Skill{
			ID:          uuid.New().String(),
			ProjectID:   projectID,
			Name:        d.Name,
			Description: d.Description,
			Content:     d.Content,
			Type:        entity.SkillType,
			CreatedAt:   createdAt,
		}
		if _, err := tx.Exec(ctx, query, s.ID, s.ProjectID, s.Name, s.Description, s.Content, s.Type, s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to insert skill %q: %w", d.Name, err)
		}
		skills = append(skills, s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit skills: %w", err)
	}
	committed = true
	return skills, nil
}

// ListByProject returns the project's prompts of promptType, oldest first.
func (r *SkillRepoImpl) ListByProject(ctx context.Context, projectID, promptType string) ([]entity.Skill, error) {
	query := `
		SELECT id, project_id, name, description, content, type, created_at
		FROM prompts
		WHERE project_id = $1 AND type = $2
		ORDER BY created_at ASC, id ASC;
	`
	rows, err := r.db.Query(ctx, query, projectID, promptType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skills := []entity.Skill{}
	for rows.Next() {
		var s entity.Skill
		if err := rows.Scan(
			&s.ID,
			&s.ProjectID,
			&s.Name,
			&s.Description,
			&s.Content,
			&s.Type,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}

	return skills, rows.Err()
}
