package response

import (
	"time"

	"github.com/user/skillgen-service/internal/entity"
)

// SkillResponse is the public shape of a stored skill.
type SkillResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenerateSkillsResponse lists the skills created by one run.
type GenerateSkillsResponse struct {
	Skills []SkillResponse `json:"skills"`
	Count  int             `json:"count"`
}

type ListSkillsResponse struct {
	Skills []SkillResponse `json:"skills"`
}

// ErrorResponse carries a human-readable message and the machine-readable failure kind.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func NewSkillResponses(skills []entity.Skill) []SkillResponse {
	out := make([]SkillResponse, 0, len(skills))
	for _, s := range skills {
		out = append(out, SkillResponse{
			ID:          s.ID,
			ProjectID:   s.ProjectID,
			Name:        s.Name,
			Description: s.Description,
			Content:     s.Content,
			Type:        s.Type,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out
}
