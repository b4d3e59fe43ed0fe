package interview

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/careerbot/internal/ai"
	"github.com/spigell/careerbot/internal/analysis"
	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/notify"
	"github.com/spigell/careerbot/internal/operation"
)

type fakeGenerator struct {
	req       ai.QuestionRequest
	questions []ai.Question
	err       error
	calls     int
}

func (f *fakeGenerator) GenerateQuestions(_ context.Context, req ai.QuestionRequest) ([]ai.Question, error) {
	f.calls++
	f.req = req
	return f.questions, f.err
}

type fakeAnalyzer struct {
	path string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, path string) (*careerbot.Analysis, error) {
	f.path = path
	return &careerbot.Analysis{Summary: "Backend engineer", Skills: []string{"Go", "Kafka"}}, nil
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		err  error
	}{
		{name: "company only", opts: Options{Company: "Acme"}},
		{name: "resume only", opts: Options{ResumePath: "cv.pdf"}},
		{name: "nothing", opts: Options{Position: "SRE"}, err: ErrMissingTarget},
		{name: "blank company", opts: Options{Company: "  "}, err: ErrMissingTarget},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Error(t, Options{Company: "Acme", Count: MaxCount + 1}.Validate())
	assert.Error(t, Options{Company: "Acme", InterviewType: "casual"}.Validate())
}

func TestGenerateAppliesDefaults(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{questions: []ai.Question{{Text: "Why Acme?"}}}
	s := NewService(gen, nil, nil, nil)

	got, err := s.Generate(context.Background(), Options{Company: " Acme "})
	require.NoError(t, err)
	assert.Equal(t, []ai.Question{{Text: "Why Acme?"}}, got)

	assert.Equal(t, "Acme", gen.req.Company)
	assert.Equal(t, DefaultCount, gen.req.Count)
	assert.Equal(t, "general", gen.req.InterviewType)
	assert.Equal(t, operation.Succeeded, s.State().Status)
}

func TestGenerateMissingTargetNeverStarts(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	rec := &notify.Recorder{}
	s := NewService(gen, nil, rec, nil)

	_, err := s.Generate(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrMissingTarget)
	assert.Zero(t, gen.calls)
	assert.Equal(t, operation.Idle, s.State().Status)
	assert.Equal(t, notify.LevelError, rec.All()[0].Level)
}

func TestGenerateReadsTextResume(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("Five years of Go"), 0o600))

	gen := &fakeGenerator{questions: []ai.Question{{Text: "q"}}}
	an := &fakeAnalyzer{}
	s := NewService(gen, an, nil, nil)

	_, err := s.Generate(context.Background(), Options{ResumePath: path})
	require.NoError(t, err)
	assert.Equal(t, "Five years of Go", gen.req.Resume)
	assert.Empty(t, an.path, "text resumes are read locally")
}

func TestGenerateAnalyzesBinaryResume(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{questions: []ai.Question{{Text: "q"}}}
	an := &fakeAnalyzer{}
	s := NewService(gen, an, nil, nil)

	_, err := s.Generate(context.Background(), Options{ResumePath: "cv.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", an.path)
	assert.Equal(t, "Backend engineer\nSkills: Go, Kafka", gen.req.Resume)
}

func TestGenerateFailure(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("model overloaded")}
	rec := &notify.Recorder{}
	s := NewService(gen, nil, rec, nil)

	_, err := s.Generate(context.Background(), Options{Company: "Acme"})
	require.Error(t, err)

	state := s.State()
	assert.Equal(t, operation.Failed, state.Status)
	assert.Nil(t, state.Result)
	assert.Equal(t, "Failed to generate questions: model overloaded", rec.All()[0].Message)
}

type failingUploader struct{}

func (failingUploader) UploadResume(context.Context, string, io.Reader) (*careerbot.Analysis, error) {
	return nil, &careerbot.Error{Kind: careerbot.KindServer, Status: 500}
}

func TestGenerateResumeFailureIsReportedOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	rec := &notify.Recorder{}
	gen := &fakeGenerator{}
	an := analysis.NewAnalyzer(failingUploader{}, rec, nil)
	s := NewService(gen, an, rec, nil)

	_, err := s.Generate(context.Background(), Options{ResumePath: path})
	require.Error(t, err)
	assert.True(t, careerbot.IsKind(err, careerbot.KindServer))
	assert.Zero(t, gen.calls)
	assert.Equal(t, []notify.Notification{
		{Level: notify.LevelError, Message: careerbot.DefaultMessage(careerbot.KindServer)},
	}, rec.All())
	assert.Equal(t, operation.Failed, s.State().Status)
}
