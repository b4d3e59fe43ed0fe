// Package chat holds one chat screen: the message log, sending a turn and
// reopening a saved conversation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/notify"
	"github.com/spigell/careerbot/internal/operation"
)

var (
	ErrEmptyMessage         = errors.New("message is empty")
	ErrConversationNotFound = errors.New("conversation not found")
)

type Sender int

const (
	User Sender = iota
	Agent
)

func (s Sender) String() string {
	if s == User {
		return "you"
	}
	return "bot"
}

type Message struct {
	ID             string
	Sender         Sender
	Text           string
	ConversationID string
}

type Backend interface {
	Send(ctx context.Context, req careerbot.SendRequest) (*careerbot.SendResult, error)
	Conversation(ctx context.Context, id string) ([]careerbot.ConversationMessage, error)
}

type Option func(*Session)

// WithTemperature forwards a sampling temperature with every message.
func WithTemperature(t float64) Option {
	return func(s *Session) {
		s.temperature = &t
	}
}

// Session is the state of one chat screen. Messages are append-only until
// Clear or Close.
type Session struct {
	backend     Backend
	notifier    notify.Notifier
	logger      *zap.Logger
	temperature *float64

	mu             sync.Mutex
	messages       []Message
	conversationID string

	send *operation.Controller[Message]
	load *operation.Controller[[]Message]
}

func NewSession(backend Backend, notifier notify.Notifier, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	s := &Session{
		backend:  backend,
		notifier: notifier,
		logger:   logger,
		send:     operation.New[Message]("chat-send", logger),
		load:     operation.New[[]Message]("chat-load", logger),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SubscribeSend registers fn for every state change of the send operation.
func (s *Session) SubscribeSend(fn func(operation.State[Message])) func() {
	return s.send.Subscribe(fn)
}

// Messages returns a copy of the log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Pending reports whether an answer is being waited for.
func (s *Session) Pending() bool {
	return s.send.State().IsPending()
}

func (s *Session) SendState() operation.State[Message] {
	return s.send.State()
}

func (s *Session) LoadState() operation.State[[]Message] {
	return s.load.State()
}

// Send appends the user's message and then the answer. A failed turn is
// shown as an agent message starting with "Error:".
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	reply, err := s.send.Run(ctx, func(ctx context.Context) (Message, error) {
		convID := s.appendMessage(User, text)

		req := careerbot.SendRequest{Message: text, ConversationID: convID, Temperature: s.temperature}
		res, err := s.backend.Send(ctx, req)
		if err != nil {
			return Message{}, err
		}

		return Message{ID: uuid.NewString(), Sender: Agent, Text: res.Reply, ConversationID: res.ConversationID}, nil
	})

	switch {
	case errors.Is(err, operation.ErrInFlight), errors.Is(err, operation.ErrDetached):
		return Message{}, err
	case err != nil:
		msg := careerbot.Message(err)
		s.appendMessage(Agent, "Error: "+msg)
		if !careerbot.IsSessionExpired(err) {
			s.notifier.Error(msg)
		}
		return Message{}, err
	}

	s.mu.Lock()
	if reply.ConversationID == "" {
		reply.ConversationID = s.conversationID
	}
	s.conversationID = reply.ConversationID
	s.messages = append(s.messages, reply)
	s.mu.Unlock()

	s.logger.Debug("answer received", zap.String("conversation", reply.ConversationID), zap.Int("length", len(reply.Text)))
	return reply, nil
}

// Load replaces the log with a saved conversation. A missing conversation
// yields ErrConversationNotFound.
func (s *Session) Load(ctx context.Context, id string) error {
	msgs, err := s.load.Run(ctx, func(ctx context.Context) ([]Message, error) {
		stored, err := s.backend.Conversation(ctx, id)
		if err != nil {
			if careerbot.IsKind(err, careerbot.KindNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrConversationNotFound, err)
			}
			return nil, err
		}

		out := make([]Message, 0, len(stored))
		for _, m := range stored {
			sender := Agent
			if m.FromUser {
				sender = User
			}
			msgID := m.ID
			if msgID == "" {
				msgID = uuid.NewString()
			}
			out = append(out, Message{ID: msgID, Sender: sender, Text: m.Text, ConversationID: id})
		}
		return out, nil
	})

	switch {
	case errors.Is(err, operation.ErrInFlight), errors.Is(err, operation.ErrDetached):
		return err
	case err != nil:
		if !careerbot.IsSessionExpired(err) {
			s.notifier.Error(careerbot.Message(err))
		}
		return err
	}

	s.mu.Lock()
	s.messages = msgs
	s.conversationID = id
	s.mu.Unlock()

	return nil
}

// StartQuestion begins a new conversation seeded with an interview
// question for the user to answer.
func (s *Session) StartQuestion(question string) Message {
	s.Clear()

	text := fmt.Sprintf("Let's practice this interview question: %q. Type your answer and I will give you feedback.", question)
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := Message{ID: uuid.NewString(), Sender: Agent, Text: text}
	s.messages = append(s.messages, msg)
	return msg
}

// Clear starts a fresh conversation. An in-flight answer is discarded.
func (s *Session) Clear() {
	s.send.Reset()
	s.load.Reset()

	s.mu.Lock()
	s.messages = nil
	s.conversationID = ""
	s.mu.Unlock()
}

// Close detaches in-flight calls and drops the log.
func (s *Session) Close() {
	s.send.Close()
	s.load.Close()

	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

func (s *Session) appendMessage(sender Sender, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, Message{
		ID:             uuid.NewString(),
		Sender:         sender,
		Text:           text,
		ConversationID: s.conversationID,
	})
	return s.conversationID
}
