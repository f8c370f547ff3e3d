package service

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces note content from a natural-language prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// AssistService drafts or expands note bodies through a generative model.
type AssistService struct {
	generator Generator
}

func NewAssistService(generator Generator) *AssistService {
	return &AssistService{
		generator: generator,
	}
}

const assistPromptTemplate = `You are a helpful assistant for a note-taking application.
The user wants to expand or organize this thought: %q.
Reply only with the note content, cleanly formatted as simple Markdown.
Be concise and clear.`

func (s *AssistService) DraftNote(ctx context.Context, prompt string) (string, error) {
	text, err := s.generator.GenerateContent(ctx, fmt.Sprintf(assistPromptTemplate, prompt))
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("content generation returned nothing")
	}
	return text, nil
}
