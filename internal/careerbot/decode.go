package careerbot

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	// FallbackReply is shown when a chat answer has no usable text field.
	FallbackReply = "Sorry, I could not read the answer from the server."

	// NoQuestionsPreview is the preview of a conversation without questions.
	NoQuestionsPreview = "No questions yet"
)

// replyFields lists the answer fields in priority order.
var replyFields = []string{"aiResponse", "message", "answer", "response", "text"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeReply extracts the answer text from a chat response body: the first
// non-empty string among replyFields, otherwise FallbackReply.
func DecodeReply(body []byte) string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return FallbackReply
	}

	return replyFromMap(raw)
}

func replyFromMap(raw map[string]any) string {
	for _, field := range replyFields {
		if s, ok := raw[field].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	return FallbackReply
}

// SummaryPreview renders the summary field of a conversation.
func SummaryPreview(summary any) string {
	switch v := summary.(type) {
	case nil:
		return NoQuestionsPreview
	case string:
		if strings.TrimSpace(v) == "" {
			return NoQuestionsPreview
		}
		return v
	}

	var parsed struct {
		Questions []string `mapstructure:"questions"`
	}
	if err := decodeLoose(summary, &parsed); err != nil || len(parsed.Questions) == 0 {
		return NoQuestionsPreview
	}

	return strings.Join(parsed.Questions, ", ")
}

// decodeLoose maps loosely typed JSON values onto tagged structs. Numbers
// become strings where needed and timestamps are parsed from strings.
func decodeLoose(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       timeHook,
		Result:           output,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func timeHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Time{}) || from.Kind() != reflect.String {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return nil, fmt.Errorf("unsupported time format %q", s)
}
