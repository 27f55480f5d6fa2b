package request

// GenerateSkillsRequest is the body of POST /api/projects/{projectID}/skills/generate.
type GenerateSkillsRequest struct {
	URL string `json:"url"`
}
