package rag

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/arkive-ai/arkive-backend/internal/llm"
	"github.com/arkive-ai/arkive-backend/internal/vectorstore"
)

// NoInfoAnswer is returned verbatim when retrieval comes back empty.
const NoInfoAnswer = "I couldn't find relevant information in the knowledge base."

type Generator struct {
	gateway llm.Gateway
	model   string
}

func NewGenerator(gw llm.Gateway, model string) *Generator {
	return &Generator{gateway: gw, model: model}
}

type Generated struct {
	Answer     string
	Confidence float64
	Tokens     int
	CostUSD    float64
}

// Generate builds a grounded prompt from the retrieved chunks and asks the
// LLM to answer only from that context. With no chunks it short-circuits to
// the fixed no-information answer without an LLM call.
func (g *Generator) Generate(ctx context.Context, query string, chunks []vectorstore.SearchResult) (*Generated, error) {
	if len(chunks) == 0 {
		return &Generated{Answer: NoInfoAnswer, Confidence: 0}, nil
	}

	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(query, chunks)},
		},
		Temperature: 0.2,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Generated{
		Answer:     resp.Content,
		Confidence: Confidence(chunks),
		Tokens:     resp.TotalTokens,
		CostUSD:    resp.CostUSD,
	}, nil
}

// Confidence is a retrieval-quality proxy, not the model's own certainty:
// mean similarity score of the retrieved chunks scaled to 0-100.
func Confidence(chunks []vectorstore.SearchResult) float64 {
	if len(chunks) == 0 {
		return 0
	}
	var sum float64
	for _, c := range chunks {
		sum += c.Score
	}
	avg := sum / float64(len(chunks))
	return math.Round(avg*1000) / 10
}

func buildPrompt(query string, chunks []vectorstore.SearchResult) string {
	var context strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&context, "\n[Source %d - %s Page %d]\n%s\n", i+1, c.Source, c.Page, c.Content)
	}

	return fmt.Sprintf(`You are Arkive AI, an ethical AI assistant governed by UNESCO and OECD AI principles.

Context from knowledge base:
%s

Rules:
- Answer ONLY based on the context above
- If the answer is not in the context, say "I don't have enough information about this in the knowledge base."
- NEVER provide instructions for illegal activities, hacking, privacy violations, or harmful acts
- If a question asks HOW TO do something potentially harmful or illegal, refuse and explain why
- At the end of your answer, always list which sources you used
- Be concise and clear
- Do NOT mention which sources don't contain information. Only mention sources that ARE used.

User Question: %s

Answer:`, context.String(), query)
}
