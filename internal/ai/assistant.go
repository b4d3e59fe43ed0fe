// Package ai turns interview options into practice questions with an LLM.
package ai

import (
	"context"
	"strings"
)

// QuestionRequest describes the interview to prepare for.
type QuestionRequest struct {
	Company       string
	Position      string
	InterviewType string
	Difficulty    string
	Count         int
	Resume        string
}

type Question struct {
	Text     string
	Guidance string
}

type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]Question, error)
}

// ContentGenerator is implemented by every LLM provider adapter.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, systemInstruction, message string) (string, error)
	Model() string
}

// Texts returns the question texts in order.
func Texts(questions []Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, strings.TrimSpace(q.Text))
	}
	return out
}
