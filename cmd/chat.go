package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/careerbot/internal/chat"
	"github.com/spigell/careerbot/internal/session"
)

const (
	chatExit = "/exit"
	chatNew  = "/new"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the career assistant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()

		conversationID := cmd.Flag("conversation").Value.String()
		return a.enter(routeChat, func() error {
			return runChat(ctx, a, conversationID, "")
		})
	},
}

func init() {
	chatCmd.Flags().StringP("conversation", "c", "", "continue a saved conversation")
	rootCmd.AddCommand(chatCmd)
}

// runChat opens a chat screen. It either continues conversationID, seeds a
// practice question or starts empty.
func runChat(ctx context.Context, a *application, conversationID, question string) error {
	var opts []chat.Option
	if t := a.config.Chat.Temperature; t != nil {
		opts = append(opts, chat.WithTemperature(*t))
	}

	s := chat.NewSession(a.client, a.notifier, a.logger.Named("chat"), opts...)
	defer s.Close()
	s.SubscribeSend(pending[chat.Message](a.notifier, "Thinking..."))

	if conversationID != "" {
		if err := s.Load(ctx, conversationID); err != nil {
			if errors.Is(err, chat.ErrConversationNotFound) {
				a.nav.Replace(routeHistory)
				return browseHistory(ctx, a)
			}
			return silent(err)
		}
		for _, m := range s.Messages() {
			printMessage(os.Stdout, m)
		}
	}

	if question != "" {
		printMessage(os.Stdout, s.StartQuestion(question))
	}

	return chatLoop(ctx, a, s)
}

func chatLoop(ctx context.Context, a *application, s *chat.Session) error {
	if interactive() {
		fmt.Printf("Type a message. %s starts a new conversation, %s quits.\n", chatNew, chatExit)
	}

	for {
		// A 401 anywhere ends the session.
		if !a.session.IsAuthenticated() {
			return silent(session.ErrLoginRequired)
		}

		text, err := askLine("you")
		if errors.Is(err, errAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(text) {
		case "":
			continue
		case chatExit:
			return nil
		case chatNew:
			s.Clear()
			a.notifier.Info("Started a new conversation.")
			continue
		}

		reply, err := s.Send(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		printMessage(os.Stdout, reply)
	}
}

func printMessage(w io.Writer, m chat.Message) {
	fmt.Fprintf(w, "%s> %s\n", m.Sender, m.Text)
}
