package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/spigell/careerbot/internal/ai"
	"github.com/spigell/careerbot/internal/analysis"
	"github.com/spigell/careerbot/internal/careerbot"
	"github.com/spigell/careerbot/internal/interview"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate interview questions and practice them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()

		flags := cmd.Flags()
		count, _ := flags.GetInt("count")
		practice, _ := flags.GetBool("practice")
		opts := interview.Options{
			Company:       flagString(cmd, "company"),
			Position:      flagString(cmd, "position"),
			ResumePath:    flagString(cmd, "resume"),
			InterviewType: flagString(cmd, "type"),
			Difficulty:    flagString(cmd, "difficulty"),
			Count:         count,
		}

		return a.enter(routeInterview, func() error {
			gen, err := a.questionGenerator(ctx)
			if err != nil {
				return err
			}

			an := analysis.NewAnalyzer(a.client, a.notifier, a.logger.Named("analysis"))
			defer an.Close()

			an.Subscribe(pending[*careerbot.Analysis](a.notifier, "Reading the resume..."))

			svc := interview.NewService(gen, an, a.notifier, a.logger.Named("interview"))
			defer svc.Close()
			svc.Subscribe(pending[[]ai.Question](a.notifier, "Generating questions..."))

			questions, err := svc.Generate(ctx, opts)
			if err != nil {
				return silent(err)
			}
			printQuestions(os.Stdout, questions)

			if !practice || !interactive() {
				return nil
			}

			items := append(ai.Texts(questions), actionBack)
			sel := promptui.Select{Label: "Practice a question", Items: items, Size: 10}
			idx, _, err := sel.Run()
			if err != nil {
				return ignoreAbort(err)
			}
			if idx == len(questions) {
				return nil
			}

			a.nav.Push(routeChat)
			return runChat(ctx, a, "", questions[idx].Text)
		})
	},
}

func init() {
	questionsCmd.Flags().String("company", "", "company you are interviewing with")
	questionsCmd.Flags().String("position", "", "position you are applying for")
	questionsCmd.Flags().String("resume", "", "resume file (.txt and .md are read locally, others are analyzed by the backend)")
	questionsCmd.Flags().String("type", "", "interview type: "+strings.Join(interview.InterviewTypes, ", "))
	questionsCmd.Flags().String("difficulty", "", "difficulty, e.g. junior, middle, senior")
	questionsCmd.Flags().IntP("count", "n", interview.DefaultCount, "number of questions")
	questionsCmd.Flags().BoolP("practice", "p", false, "pick a question and practice it in chat")

	rootCmd.AddCommand(questionsCmd)
}

func flagString(cmd *cobra.Command, name string) string {
	return strings.TrimSpace(cmd.Flag(name).Value.String())
}

func printQuestions(w io.Writer, questions []ai.Question) {
	for i, q := range questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Text)
		if q.Guidance != "" {
			fmt.Fprintf(w, "   %s\n", q.Guidance)
		}
	}
}
