package careerbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type SendRequest struct {
	Message        string   `json:"message"`
	ConversationID string   `json:"conversationId,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

type SendResult struct {
	Reply          string
	ConversationID string
}

// ConversationSummary is one entry of the conversation list.
type ConversationSummary struct {
	ID                   string    `mapstructure:"id"`
	Title                string    `mapstructure:"title"`
	CreatedAt            time.Time `mapstructure:"createdAt"`
	Summary              any       `mapstructure:"summary"`
	FirstQuestionPreview string    `mapstructure:"-"`
}

// ConversationMessage is one stored turn. FromUser is false for answers.
type ConversationMessage struct {
	ID             string    `mapstructure:"chatId"`
	FromUser       bool      `mapstructure:"sender"`
	Text           string    `mapstructure:"message"`
	Timestamp      time.Time `mapstructure:"timestamp"`
	ConversationID string    `mapstructure:"conversationId"`
}

func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	data, err := c.sendJSON(ctx, http.MethodPost, "/api/chat/send", req, true)
	if err != nil {
		return nil, err
	}

	res := &SendResult{Reply: DecodeReply(data), ConversationID: req.ConversationID}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err == nil {
		var meta struct {
			ConversationID string `mapstructure:"conversationId"`
		}
		if err := decodeLoose(raw, &meta); err == nil && meta.ConversationID != "" {
			res.ConversationID = meta.ConversationID
		}
	}

	return res, nil
}

func (c *Client) Conversations(ctx context.Context) ([]ConversationSummary, error) {
	data, err := c.getJSON(ctx, "/api/chat/history", true)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode conversation list: %w", err)
	}

	out := make([]ConversationSummary, 0, len(raw))
	for _, item := range raw {
		var summary ConversationSummary
		if err := decodeLoose(item, &summary); err != nil {
			return nil, fmt.Errorf("decode conversation list: %w", err)
		}
		if summary.ID == "" {
			if legacy, ok := item["_id"]; ok {
				summary.ID = fmt.Sprint(legacy)
			}
		}
		summary.FirstQuestionPreview = SummaryPreview(summary.Summary)
		out = append(out, summary)
	}

	return out, nil
}

func (c *Client) Conversation(ctx context.Context, id string) ([]ConversationMessage, error) {
	if id == "" {
		return nil, &Error{Kind: KindValidation, Message: "conversation id is required"}
	}

	data, err := c.getJSON(ctx, "/api/chat/"+url.PathEscape(id), true)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}

	var messages []ConversationMessage
	if err := decodeLoose(raw, &messages); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}

	return messages, nil
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	if id == "" {
		return &Error{Kind: KindValidation, Message: "conversation id is required"}
	}

	_, err := c.sendJSON(ctx, http.MethodDelete, "/api/chat/"+url.PathEscape(id), nil, true)
	return err
}
