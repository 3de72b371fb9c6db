package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqProvider returns a provider backed by Groq's OpenAI-compatible API.
// Groq hosts the Llama chat models and the Llama Guard moderation model but
// no embedding models.
func NewGroqProvider(apiKey string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   "groq",
		models: []string{
			"llama-3.3-70b-versatile", "llama-3.1-8b-instant", "llama-guard-3-8b",
		},
	}
}
