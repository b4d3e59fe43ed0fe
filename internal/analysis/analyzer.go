// Package analysis uploads a resume and keeps the analysis result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/notify"
	"github.com/spigell/careerbot/internal/operation"
)

// MaxFileSize is the largest resume accepted for upload.
const MaxFileSize = 10 << 20

var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

type Uploader interface {
	UploadResume(ctx context.Context, filename string, file io.Reader) (*careerbot.Analysis, error)
}

type Analyzer struct {
	uploader Uploader
	notifier notify.Notifier
	logger   *zap.Logger

	ctrl *operation.Controller[*careerbot.Analysis]
}

func NewAnalyzer(uploader Uploader, notifier notify.Notifier, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Analyzer{
		uploader: uploader,
		notifier: notifier,
		logger:   logger,
		ctrl:     operation.New[*careerbot.Analysis]("resume-analysis", logger),
	}
}

func (a *Analyzer) State() operation.State[*careerbot.Analysis] {
	return a.ctrl.State()
}

// Reset clears the last result.
// Subscribe registers fn for every state change of the analysis.
func (a *Analyzer) Subscribe(fn func(operation.State[*careerbot.Analysis])) func() {
	return a.ctrl.Subscribe(fn)
}

func (a *Analyzer) Reset() {
	a.ctrl.Reset()
}

func (a *Analyzer) Close() {
	a.ctrl.Close()
}

// ValidateFile checks a resume locally before anything is uploaded.
func ValidateFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return &careerbot.Error{Kind: careerbot.KindValidation, Message: "choose a resume file first"}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(AllowedExtensions, ext) {
		return &careerbot.Error{
			Kind:    careerbot.KindValidation,
			Message: fmt.Sprintf("only %s files can be uploaded", strings.Join(AllowedExtensions, ", ")),
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &careerbot.Error{Kind: careerbot.KindValidation, Message: fmt.Sprintf("cannot read %s", path), Err: err}
	}
	if info.IsDir() {
		return &careerbot.Error{Kind: careerbot.KindValidation, Message: fmt.Sprintf("%s is a directory", path)}
	}
	if info.Size() == 0 {
		return &careerbot.Error{Kind: careerbot.KindValidation, Message: fmt.Sprintf("%s is empty", path)}
	}
	if info.Size() > MaxFileSize {
		return &careerbot.Error{Kind: careerbot.KindValidation, Message: fmt.Sprintf("%s is larger than %d MB", path, MaxFileSize>>20)}
	}

	return nil
}

// Analyze validates and uploads the resume at path.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*careerbot.Analysis, error) {
	if err := ValidateFile(path); err != nil {
		a.notifier.Error(careerbot.Message(err))
		return nil, err
	}

	res, err := a.ctrl.Run(ctx, func(ctx context.Context) (*careerbot.Analysis, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return a.uploader.UploadResume(ctx, filepath.Base(path), f)
	})

	switch {
	case errors.Is(err, operation.ErrInFlight), errors.Is(err, operation.ErrDetached):
		return nil, err
	case err != nil:
		if !careerbot.IsSessionExpired(err) {
			a.notifier.Error(careerbot.Message(err))
		}
		return nil, err
	}

	a.logger.Debug("resume analyzed", zap.String("file", filepath.Base(path)), zap.Int("skills", len(res.Skills)))
	a.notifier.Success("Resume analysis finished.")
	return res, nil
}
