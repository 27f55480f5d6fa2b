package usecase

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/user/skillgen-service/internal/entity"
)

// ValidateSkills parses raw model output and lifts every usable candidate into
// a SkillDraft. Candidates without a name or content are dropped.
func ValidateSkills(raw string) ([]entity.SkillDraft, error) {
	drafts, _, err := validateSkills(raw)
	return drafts, err
}

func validateSkills(raw string) ([]entity.SkillDraft, int, error) {
	body := []byte(stripCodeFence(raw))
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, wrapError(KindMalformedOutput, "model returned invalid JSON", err)
	}

	// Well-formed JSON without a "skills" array carries zero candidates.
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, 0, newError(KindNoSkillsIdentified, "model output is not a JSON object")
	}
	field, ok := top["skills"]
	if !ok || isJSONNull(field) {
		return nil, 0, newError(KindNoSkillsIdentified, `model output has no "skills" field`)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil {
		return nil, 0, wrapError(KindNoSkillsIdentified, `"skills" is not an array`, err)
	}
	if len(items) == 0 {
		return nil, 0, newError(KindNoSkillsIdentified, "model could not identify any skills from the documentation")
	}

	drafts := make([]entity.SkillDraft, 0, len(items))
	for _, item := range items {
		draft, ok := liftCandidate(decodeCandidate(item))
		if !ok {
			continue
		}
		drafts = append(drafts, draft)
	}

	dropped := len(items) - len(drafts)
	if len(drafts) == 0 {
		return nil, dropped, newError(KindNoSkillsIdentified, "no skill candidate had both a name and content")
	}
	return drafts, dropped, nil
}

// decodeCandidate reads an untrusted array element. Fields that are missing or
// not strings stay nil; an element that is not an object yields an empty candidate.
func decodeCandidate(item json.RawMessage) entity.SkillCandidate {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return entity.SkillCandidate{}
	}
	return entity.SkillCandidate{
		Name:        stringField(fields, "name"),
		Description: stringField(fields, "description"),
		Content:     stringField(fields, "content"),
	}
}

func liftCandidate(c entity.SkillCandidate) (entity.SkillDraft, bool) {
	if c.Name == nil || c.Content == nil {
		return entity.SkillDraft{}, false
	}
	name := strings.TrimSpace(*c.Name)
	if name == "" || strings.TrimSpace(*c.Content) == "" {
		return entity.SkillDraft{}, false
	}
	description := ""
	if c.Description != nil {
		description = strings.TrimSpace(*c.Description)
	}
	return entity.SkillDraft{Name: name, Description: description, Content: *c.Content}, true
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// stripCodeFence removes a ```json ... ``` wrapper some models add even in JSON mode.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}
