package langchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	prompts []string
	opts    llms.CallOptions
	reply   string
	err     error
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.opts)
	}
	for _, m := range messages {
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGenerateContent(t *testing.T) {
	t.Parallel()

	model := &fakeModel{reply: "  [\"q\"]  "}
	g := &Generator{llm: model, model: "gpt-test", temperature: 0.2}

	out, err := g.GenerateContent(context.Background(), "system rules", "company: Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `["q"]` {
		t.Fatalf("unexpected output %q", out)
	}
	if len(model.prompts) != 1 || !strings.HasPrefix(model.prompts[0], "system rules\n\n") || !strings.HasSuffix(model.prompts[0], "company: Acme") {
		t.Fatalf("unexpected prompt %q", model.prompts)
	}
	if model.opts.Temperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", model.opts.Temperature)
	}
}

func TestGenerateContentErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("rate limited")
	g := &Generator{llm: &fakeModel{err: boom}}
	if _, err := g.GenerateContent(context.Background(), "", "msg"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}

	g = &Generator{llm: &fakeModel{reply: " "}}
	if _, err := g.GenerateContent(context.Background(), "", "msg"); err == nil {
		t.Fatal("expected error for empty reply")
	}

	if _, err := g.GenerateContent(context.Background(), "", " "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator(Options{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
