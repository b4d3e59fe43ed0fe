package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/history"
)

const (
	actionOpen   = "Open"
	actionDelete = "Delete"
	actionBack   = "back"

	untitled = "Untitled conversation"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved conversations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()

		deleteID := cmd.Flag("delete").Value.String()
		return a.enter(routeHistory, func() error {
			if deleteID != "" {
				return deleteConversation(ctx, a, deleteID)
			}
			return browseHistory(ctx, a)
		})
	},
}

func init() {
	historyCmd.Flags().String("delete", "", "delete the conversation with this ID without prompting")
	rootCmd.AddCommand(historyCmd)
}

func browseHistory(ctx context.Context, a *application) error {
	b := history.NewBrowser(a.client, a.notifier, a.logger.Named("history"))
	defer b.Close()

	if err := b.Refresh(ctx); err != nil {
		return silent(err)
	}

	for {
		items := b.Items()
		if len(items) == 0 {
			fmt.Println("No saved conversations yet.")
			return nil
		}

		if !interactive() {
			printConversations(os.Stdout, items)
			return nil
		}

		labels := make([]string, 0, len(items)+1)
		for _, item := range items {
			labels = append(labels, conversationLabel(item))
		}
		labels = append(labels, actionBack)

		list := promptui.Select{Label: "Conversations", Items: labels, Size: 10}
		idx, _, err := list.Run()
		if err != nil {
			return ignoreAbort(err)
		}
		if idx == len(items) {
			return nil
		}

		item := items[idx]
		actions := promptui.Select{Label: conversationLabel(item), Items: []string{actionOpen, actionDelete, actionBack}}
		_, action, err := actions.Run()
		if err != nil {
			return ignoreAbort(err)
		}

		switch action {
		case actionOpen:
			a.nav.Push(routeChat)
			return runChat(ctx, a, item.ID, "")
		case actionDelete:
			if confirm("Delete this conversation") {
				// The outcome is reported by the notifier and the list
				// is rolled back on failure.
				_ = b.Delete(ctx, item.ID)
			}
		}
	}
}

func deleteConversation(ctx context.Context, a *application, id string) error {
	b := history.NewBrowser(a.client, a.notifier, a.logger.Named("history"))
	defer b.Close()

	if err := b.Refresh(ctx); err != nil {
		return silent(err)
	}
	if err := b.Delete(ctx, id); err != nil {
		return silent(err)
	}
	return nil
}

func conversationLabel(c careerbot.ConversationSummary) string {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = strings.TrimSpace(c.FirstQuestionPreview)
	}
	if title == "" {
		title = untitled
	}

	if c.CreatedAt.IsZero() {
		return title
	}
	return fmt.Sprintf("%s  (%s)", title, c.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func printConversations(w io.Writer, items []careerbot.ConversationSummary) {
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\n", item.ID, conversationLabel(item))
	}
}

func ignoreAbort(err error) error {
	if err = promptErr(err); errors.Is(err, errAborted) {
		return nil
	}
	return err
}
