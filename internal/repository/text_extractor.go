package repository

import "context"

// TextExtractor is a text-generation model that answers in JSON.
type TextExtractor interface {
	// Extract sends the system instruction and user content and returns the raw completion text.
	Extract(ctx context.Context, systemPrompt, userContent string) (string, error)
}
