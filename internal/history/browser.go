// Package history lists saved conversations and deletes them optimistically.
package history

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/notify"
	"github.com/spigell/careerbot/internal/operation"
)

const (
	msgLoadFailed   = "Failed to load the conversation list."
	msgDeleted      = "Conversation deleted."
	msgDeleteFailed = "Failed to delete the conversation."
)

type Backend interface {
	Conversations(ctx context.Context) ([]careerbot.ConversationSummary, error)
	DeleteConversation(ctx context.Context, id string) error
}

type Browser struct {
	backend  Backend
	notifier notify.Notifier
	logger   *zap.Logger

	load  *operation.Controller[[]careerbot.ConversationSummary]
	items *operation.List[careerbot.ConversationSummary]
}

func NewBrowser(backend Backend, notifier notify.Notifier, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Browser{
		backend:  backend,
		notifier: notifier,
		logger:   logger,
		load:     operation.New[[]careerbot.ConversationSummary]("history-load", logger),
		items:    operation.NewList[careerbot.ConversationSummary](nil, logger),
	}
}

func (b *Browser) Items() []careerbot.ConversationSummary {
	return b.items.Items()
}

func (b *Browser) LoadState() operation.State[[]careerbot.ConversationSummary] {
	return b.load.State()
}

// Refresh fetches the list from the backend.
func (b *Browser) Refresh(ctx context.Context) error {
	list, err := b.load.Run(ctx, b.backend.Conversations)

	switch {
	case errors.Is(err, operation.ErrInFlight), errors.Is(err, operation.ErrDetached):
		return err
	case err != nil:
		if !careerbot.IsSessionExpired(err) {
			b.notifier.Error(msgLoadFailed)
		}
		return err
	}

	b.items.Replace(list)
	b.logger.Debug("conversation list loaded", zap.Int("count", len(list)))
	return nil
}

// Delete removes the conversation from the list right away and restores the
// previous list when the backend refuses.
func (b *Browser) Delete(ctx context.Context, id string) error {
	err := b.items.RemoveOptimistic(ctx,
		func(c careerbot.ConversationSummary) bool { return c.ID == id },
		func(ctx context.Context) error { return b.backend.DeleteConversation(ctx, id) },
	)
	if err != nil {
		b.logger.Debug("delete rolled back", zap.String("conversation", id), zap.Error(err))
		b.notifier.Error(msgDeleteFailed)
		return err
	}

	b.notifier.Success(msgDeleted)
	return nil
}

// Close detaches an in-flight refresh.
func (b *Browser) Close() {
	b.load.Close()
}
