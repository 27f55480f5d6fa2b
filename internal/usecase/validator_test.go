package usecase

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/user/skillgen-service/internal/entity"
)

func TestValidateSkillsRejects(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind ErrorKind
	}{
		{name: "not json", raw: "not json", wantKind: KindMalformedOutput},
		{name: "empty string", raw: "", wantKind: KindMalformedOutput},
		{name: "top level array", raw: `[{"name":"A","content":"x"}]`, wantKind: KindNoSkillsIdentified},
		{name: "missing skills", raw: `{"items": []}`, wantKind: KindNoSkillsIdentified},
		{name: "null skills", raw: `{"skills": null}`, wantKind: KindNoSkillsIdentified},
		{name: "skills not array", raw: `{"skills": "many"}`, wantKind: KindNoSkillsIdentified},
		{name: "top level number", raw: `5`, wantKind: KindNoSkillsIdentified},
		{name: "top level null", raw: `null`, wantKind: KindNoSkillsIdentified},
		{name: "truncated object", raw: `{"skills": [`, wantKind: KindMalformedOutput},
		{name: "empty skills", raw: `{"skills": []}`, wantKind: KindNoSkillsIdentified},
		{name: "only candidate has empty name", raw: `{"skills":[{"name":"","content":"x"}]}`, wantKind: KindNoSkillsIdentified},
		{name: "blank content", raw: `{"skills":[{"name":"A","content":"   "}]}`, wantKind: KindNoSkillsIdentified},
		{name: "non-string fields", raw: `{"skills":[{"name":7,"content":["x"]}, "plain string"]}`, wantKind: KindNoSkillsIdentified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts, err := ValidateSkills(tt.raw)
			if err == nil {
				t.Fatalf("ValidateSkills() = %v, want error", drafts)
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q, want %q (err: %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestValidateSkillsDropsInvalidCandidates(t *testing.T) {
	raw := `{"skills":[
		{"name":"Returns Policy","description":"Use for refunds","content":"Refunds within 30 days."},
		{"name":"","content":"orphan"},
		{"name":"API Authentication","content":"Send a bearer token."},
		{"description":"no name or content"}
	]}`

	drafts, dropped, err := validateSkills(raw)
	if err != nil {
		t.Fatalf("validateSkills() error = %v", err)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	want := []entity.SkillDraft{
		{Name: "Returns Policy", Description: "Use for refunds", Content: "Refunds within 30 days."},
		{Name: "API Authentication", Description: "", Content: "Send a bearer token."},
	}
	if !reflect.DeepEqual(drafts, want) {
		t.Errorf("drafts = %#v, want %#v", drafts, want)
	}
}

func TestValidateSkillsSingleCandidate(t *testing.T) {
	drafts, err := ValidateSkills(`{"skills": [{"name":"A","content":"..."}]}`)
	if err != nil {
		t.Fatalf("ValidateSkills() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].Name != "A" || drafts[0].Description != "" {
		t.Errorf("drafts = %#v", drafts)
	}
}

func TestValidateSkillsStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"skills\":[{\"name\":\"A\",\"content\":\"b\"}]}\n```"
	drafts, err := ValidateSkills(raw)
	if err != nil {
		t.Fatalf("ValidateSkills() error = %v", err)
	}
	if len(drafts) != 1 {
		t.Errorf("len(drafts) = %d, want 1", len(drafts))
	}
}

func TestValidateSkillsIsIdempotent(t *testing.T) {
	first, err := ValidateSkills(`{"skills":[
		{"name":"  Webhooks ","description":" When events fire ","content":"Verify signatures.\n"},
		{"name":"Pagination","content":"Use the cursor param."}
	]}`)
	if err != nil {
		t.Fatal(err)
	}

	encoded, err := json.Marshal(map[string]any{"skills": first})
	if err != nil {
		t.Fatal(err)
	}
	second, err := ValidateSkills(string(encoded))
	if err != nil {
		t.Fatalf("re-validation error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-validation changed the list:\n first=%#v\nsecond=%#v", first, second)
	}
}

func TestPipelineErrorMatchesByKind(t *testing.T) {
	err := wrapError(KindCrawlFailed, "crawl failed", errors.New("timeout"))
	if !errors.Is(err, ErrCrawlFailed) {
		t.Error("errors.Is(err, ErrCrawlFailed) = false")
	}
	if errors.Is(err, ErrNoContent) {
		t.Error("errors.Is(err, ErrNoContent) = true")
	}
	if got := err.Error(); got != "crawl failed: timeout" {
		t.Errorf("Error() = %q", got)
	}
	if !KindCrawlFailed.Retryable() || KindNoContent.Retryable() {
		t.Error("Retryable classification is wrong")
	}
}
