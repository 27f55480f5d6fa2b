package entity

import "time"

// SkillType is the prompt type under which generated skills are stored.
const SkillType = "skill"

// SkillCandidate is one element of the model's "skills" array before validation.
// A nil field means the model omitted it or sent a non-string value.
type SkillCandidate struct {
	Name        *string
	Description *string
	Content     *string
}

// SkillDraft is a validated skill that has not been persisted yet.
type SkillDraft struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Content     string `json:"content" yaml:"content"`
}

// Skill mirrors a `prompts` row of type "skill".
type Skill struct {
	ID          string    `json:"id" yaml:"id"`
	ProjectID   string    `json:"project_id" yaml:"project_id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Content     string    `json:"content" yaml:"content"`
	Type        string    `json:"type" yaml:"type"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}
