// Package chat answers questions about Event Spot with a Gemini model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"eventspot/logger"
)

const (
	DefaultModel  = "gemini-2.5-flash"
	FallbackReply = "Sorry, something went wrong!"

	systemInstruction = "You are a robot, Your name is Namitha"
	promptTemplate    = "You are Event Spot's AI Assistant. Only answer questions about our app, events, or services. " +
		"If the question is unrelated, respond with: \"I’m sorry, I can’t answer that. Please write an email or call us.\" " +
		"User question: %s"
)

var ErrEmptyMessage = errors.New("chat: message is required")

// Generator produces one model answer for prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, systemInstruction string) (string, error)
}

type gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("newGemini: unable to create client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &gemini{client: client, model: model}, nil
}

func (g *gemini) Generate(ctx context.Context, prompt, instruction string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return res.Text(), nil
}

type Assistant struct {
	gen Generator
}

func NewAssistant(gen Generator) *Assistant {
	return &Assistant{gen: gen}
}

// Prompt wraps a user's question in the assistant's instructions.
func Prompt(message string) string {
	return fmt.Sprintf(promptTemplate, message)
}

func (a *Assistant) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	reply, err := a.gen.Generate(ctx, Prompt(message), systemInstruction)
	if err != nil {
		logger.Errorf(ctx, "chat: gemini error: %+v", err)
		return "", err
	}
	return reply, nil
}
