// Package interview generates practice questions for an upcoming interview.
package interview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/ai"
	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/notify"
	"github.com/spigell/careerbot/internal/operation"
)

const (
	DefaultCount = 5
	MaxCount     = 20
)

var ErrMissingTarget = errors.New("enter a company name or attach a resume file")

// errResumeAnalysis marks failures the ResumeAnalyzer has already reported.
var errResumeAnalysis = errors.New("resume analysis failed")

var InterviewTypes = []string{"general", "technical", "behavioral"}

type Options struct {
	Company       string
	Position      string
	ResumePath    string
	InterviewType string
	Difficulty    string
	Count         int
}

// Validate checks the options locally. At least a company or a resume is
// required.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Company) == "" && strings.TrimSpace(o.ResumePath) == "" {
		return ErrMissingTarget
	}
	if o.Count < 0 || o.Count > MaxCount {
		return fmt.Errorf("question count must be between 1 and %d", MaxCount)
	}
	if o.InterviewType != "" && !validType(o.InterviewType) {
		return fmt.Errorf("unknown interview type %q, use one of %s", o.InterviewType, strings.Join(InterviewTypes, ", "))
	}
	return nil
}

func validType(t string) bool {
	for _, v := range InterviewTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ResumeAnalyzer turns a binary resume into text through the backend. It
// reports its own failures to the user.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, path string) (*careerbot.Analysis, error)
}

type Service struct {
	generator ai.QuestionGenerator
	analyzer  ResumeAnalyzer
	notifier  notify.Notifier
	logger    *zap.Logger

	ctrl *operation.Controller[[]ai.Question]
}

// NewService creates the service. analyzer may be nil, then only plain text
// resumes can be used.
func NewService(generator ai.QuestionGenerator, analyzer ResumeAnalyzer, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Service{
		generator: generator,
		analyzer:  analyzer,
		notifier:  notifier,
		logger:    logger,
		ctrl:      operation.New[[]ai.Question]("question-generation", logger),
	}
}

func (s *Service) State() operation.State[[]ai.Question] {
	return s.ctrl.State()
}

// Subscribe registers fn for every state change of the generation.
func (s *Service) Subscribe(fn func(operation.State[[]ai.Question])) func() {
	return s.ctrl.Subscribe(fn)
}

func (s *Service) Reset() {
	s.ctrl.Reset()
}

func (s *Service) Close() {
	s.ctrl.Close()
}

func (s *Service) Generate(ctx context.Context, opts Options) ([]ai.Question, error) {
	if err := opts.Validate(); err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}

	if opts.Count == 0 {
		opts.Count = DefaultCount
	}
	if opts.InterviewType == "" {
		opts.InterviewType = InterviewTypes[0]
	}

	questions, err := s.ctrl.Run(ctx, func(ctx context.Context) ([]ai.Question, error) {
		resume, err := s.resumeText(ctx, opts.ResumePath)
		if err != nil {
			return nil, err
		}

		return s.generator.GenerateQuestions(ctx, ai.QuestionRequest{
			Company:       strings.TrimSpace(opts.Company),
			Position:      strings.TrimSpace(opts.Position),
			InterviewType: opts.InterviewType,
			Difficulty:    opts.Difficulty,
			Count:         opts.Count,
			Resume:        resume,
		})
	})

	switch {
	case errors.Is(err, operation.ErrInFlight), errors.Is(err, operation.ErrDetached):
		return nil, err
	case errors.Is(err, errResumeAnalysis), careerbot.IsSessionExpired(err):
		return nil, err
	case err != nil:
		s.notifier.Error(fmt.Sprintf("Failed to generate questions: %s", careerbot.Message(err)))
		return nil, err
	}

	s.logger.Debug("questions generated", zap.Int("count", len(questions)))
	return questions, nil
}

func (s *Service) resumeText(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read resume: %w", err)
		}
		return string(data), nil
	}

	if s.analyzer == nil {
		return "", fmt.Errorf("cannot read %s: only text resumes are supported without the backend", filepath.Base(path))
	}

	analysis, err := s.analyzer.Analyze(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errResumeAnalysis, err)
	}

	var b strings.Builder
	b.WriteString(analysis.Summary)
	if len(analysis.Skills) > 0 {
		b.WriteString("\nSkills: ")
		b.WriteString(strings.Join(analysis.Skills, ", "))
	}
	return b.String(), nil
}
