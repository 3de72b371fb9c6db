package moderation

import (
	"context"
	"fmt"
	"strings"
)

type keywordCategory struct {
	name     string
	patterns []string
}

// Keyword flags queries by substring matching against known harmful-category
// terms. No network calls, so it never fails and never degrades latency.
type Keyword struct {
	categories []keywordCategory
}

func NewKeyword() *Keyword {
	return &Keyword{
		categories: []keywordCategory{
			{
				name: "violence",
				patterns: []string{
					"make a bomb", "make explosives", "build a weapon",
					"how to harm", "how to kill",
				},
			},
			{
				name: "illegal activity",
				patterns: []string{
					"hack into", "how to steal", "how to counterfeit",
					"how to forge", "launder money",
				},
			},
			{
				name: "malware",
				patterns: []string{
					"write malware", "create a virus", "write ransomware",
				},
			},
		},
	}
}

func (k *Keyword) Name() string { return "keyword" }

func (k *Keyword) Classify(_ context.Context, query string) (*Result, error) {
	lower := strings.ToLower(query)

	for _, category := range k.categories {
		for _, p := range category.patterns {
			if strings.Contains(lower, p) {
				return &Result{
					Flagged: true,
					Reason:  fmt.Sprintf("Content policy violation detected (%s)", category.name),
				}, nil
			}
		}
	}

	return &Result{Flagged: false}, nil
}
