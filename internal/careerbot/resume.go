package careerbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Analysis is the backend's reading of an uploaded resume.
type Analysis struct {
	Summary         string   `mapstructure:"summary"`
	Skills          []string `mapstructure:"skills"`
	Recommendations []string `mapstructure:"recommendations"`
	Raw             string   `mapstructure:"-"`
}

// UploadResume posts the file as multipart field "file" and decodes the
// analysis. A non-JSON answer becomes the summary.
func (c *Client) UploadResume(ctx context.Context, filename string, file io.Reader) (*Analysis, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/resume/upload"), &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	data, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}

	return decodeAnalysis(data)
}

func decodeAnalysis(data []byte) (*Analysis, error) {
	text := strings.TrimSpace(string(data))

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		var s string
		if json.Unmarshal(data, &s) == nil {
			text = s
		}
		if text == "" {
			return nil, &Error{Kind: KindUnknown, Message: "the analysis came back empty"}
		}
		return &Analysis{Summary: text, Raw: text}, nil
	}

	analysis := &Analysis{Raw: text}
	if err := decodeLoose(raw, analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if analysis.Summary == "" {
		if reply := replyFromMap(raw); reply != FallbackReply {
			analysis.Summary = reply
		}
	}

	return analysis, nil
}
