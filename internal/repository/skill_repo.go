package repository

import (
	"context"

	"github.com/user/skillgen-service/internal/entity"
)

// SkillRepository stores generated skills.
type SkillRepository interface {
	// CreateBatch persists all drafts under projectID, or none of them.
	CreateBatch(ctx context.Context, projectID string, drafts []entity.SkillDraft) ([]entity.Skill, error)
	// ListByProject returns the project's prompts of the given type, oldest first.
	ListByProject(ctx context.Context, projectID, promptType string) ([]entity.Skill, error)
}
