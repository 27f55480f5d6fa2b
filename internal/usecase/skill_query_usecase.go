package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
)

// SkillQuery reads the skills attached to a project.
type SkillQuery interface {
	ListSkills(ctx context.Context, principalID, projectID string) ([]entity.Skill, error)
}

type skillQueryUseCase struct {
	projectRepo repository.ProjectRepository
	skillRepo   repository.SkillRepository
}

// NewSkillQuery creates a new SkillQuery use case.
func NewSkillQuery(projectRepo repository.ProjectRepository, skillRepo repository.SkillRepository) SkillQuery {
	return &skillQueryUseCase{projectRepo: projectRepo, skillRepo: skillRepo}
}

func (uc *skillQueryUseCase) ListSkills(ctx context.Context, principalID, projectID string) ([]entity.Skill, error) {
	if strings.TrimSpace(principalID) == "" {
		return nil, newError(KindUnauthorized, "authentication required")
	}
	if _, err := uc.projectRepo.FindOwned(ctx, projectID, principalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, "project not found")
		}
		return nil, err
	}
	return uc.skillRepo.ListByProject(ctx, projectID, entity.SkillType)
}
