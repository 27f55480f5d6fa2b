package usecase

import (
	"context"
	"strings"

	"github.com/user/skillgen-service/internal/entity"
	"github.com/user/skillgen-service/internal/repository"
)

// SkillExtractionPrompt is the fixed system instruction sent with every corpus.
const SkillExtractionPrompt = `You are an expert at analyzing documentation and extracting distinct skills for an AI agent.

Given documentation content, identify the key knowledge areas and create a set of skills. Each skill should represent a distinct topic or capability the agent needs.

Return a JSON object with a "skills" array. Each skill has:
- "name": short descriptive name (e.g. "Returns Policy", "API Authentication")
- "description": one sentence explaining when the agent should use this skill
- "content": the actual instructions and knowledge for this skill, written as clear directives the agent can follow. Include relevant details, steps, and rules from the docs.

Aim for 3-10 skills depending on the breadth of the documentation. Each skill should be self-contained and focused on one topic.

Documents in the input are separated by lines containing only "---".`

const userContentPrefix = "Analyze the following documentation and generate skills:\n\n"

// SkillExtractor asks a text model to partition a corpus into skills.
type SkillExtractor struct {
	model repository.TextExtractor
}

func NewSkillExtractor(model repository.TextExtractor) *SkillExtractor {
	return &SkillExtractor{model: model}
}

// Extract returns the model's raw answer. It does not retry.
func (e *SkillExtractor) Extract(ctx context.Context, corpus entity.AggregatedCorpus) (string, error) {
	raw, err := e.model.Extract(ctx, SkillExtractionPrompt, userContentPrefix+corpus.Text)
	if err != nil {
		return "", wrapError(KindExtractionFailed, "failed to generate skills from the documentation", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", newError(KindExtractionFailed, "model returned an empty response")
	}
	return raw, nil
}
