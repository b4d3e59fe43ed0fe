// Package langchain adapts an OpenAI chat model through langchaingo to
// ai.ContentGenerator.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultModel = "gpt-4o-mini"

type Generator struct {
	llm         llms.Model
	model       string
	temperature float64
}

type Options struct {
	APIKey      string
	Model       string
	Temperature float64
}

func NewGenerator(opts Options) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	llm, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return &Generator{llm: llm, model: model, temperature: opts.Temperature}, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) GenerateContent(ctx context.Context, systemInstruction, message string) (string, error) {
	if g == nil || g.llm == nil {
		return "", errors.New("langchain generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	prompt := message
	if system := strings.TrimSpace(systemInstruction); system != "" {
		prompt = system + "\n\n" + message
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("openai returned empty response")
	}

	return out, nil
}
