package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/logger"
	"github.com/spigell/careerbot/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultCount        = 5
	maxResumeRunes      = 20000
)

// QuestionMaker builds the prompt, asks the provider and parses the answer.
type QuestionMaker struct {
	generator ContentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewQuestionMaker(generator ContentGenerator, provider string, log *zap.Logger, maxLogLength int) *QuestionMaker {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &QuestionMaker{
		generator: generator,
		logger:    logger.WithCommonFields(log, provider, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (m *QuestionMaker) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]Question, error) {
	if req.Count <= 0 {
		req.Count = defaultCount
	}

	system := buildSystemPrompt(req.Count)
	message := buildMessage(req)

	m.logger.Debug("generate questions request",
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("generate questions response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}

	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}

	return questions, nil
}

func buildSystemPrompt(count int) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Write {{COUNT}} interview questions as a JSON array of {\"question\",\"intent\"} objects."
	}
	return strings.ReplaceAll(template, "{{COUNT}}", strconv.Itoa(count))
}

func buildMessage(req QuestionRequest) string {
	var b strings.Builder

	line := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			value = "not specified"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}

	line("Company", req.Company)
	line("Position", req.Position)
	line("Interview type", req.InterviewType)
	line("Difficulty", req.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", req.Count)

	if resume := strings.TrimSpace(req.Resume); resume != "" {
		if utf8.RuneCountInString(resume) > maxResumeRunes {
			resume = string([]rune(resume)[:maxResumeRunes])
		}
		b.WriteString("\nResume:\n")
		b.WriteString(resume)
		b.WriteString("\n")
	}

	return b.String()
}

// parseQuestions accepts an array of objects or strings, optionally wrapped
// in {"questions": [...]} and markdown fences.
func parseQuestions(raw string) ([]Question, error) {
	cleaned := extractJSON(raw)

	var items []any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var wrapped map[string]any
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil {
			return nil, fmt.Errorf("parse questions: %w", err)
		}
		list, ok := wrapped["questions"].([]any)
		if !ok {
			return nil, errors.New("parse questions: no questions in response")
		}
		items = list
	}

	questions := make([]Question, 0, len(items))
	for _, item := range items {
		var q Question
		switch v := item.(type) {
		case string:
			q.Text = v
		case map[string]any:
			q.Text = coerceString(firstOf(v, "question", "text", "q"))
			q.Guidance = coerceString(firstOf(v, "intent", "guidance", "purpose"))
		}

		if q.Text = strings.TrimSpace(q.Text); q.Text == "" {
			continue
		}
		q.Guidance = strings.TrimSpace(q.Guidance)
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, errors.New("parse questions: response contained no questions")
	}

	return questions, nil
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
