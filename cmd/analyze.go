package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spigell/careerbot/internal/analysis"
	"github.com/spigell/careerbot/internal/careerbot"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Upload a resume and show the analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()

		return a.enter(routeAnalysis, func() error {
			an := analysis.NewAnalyzer(a.client, a.notifier, a.logger.Named("analysis"))
			defer an.Close()
			an.Subscribe(pending[*careerbot.Analysis](a.notifier, "Analyzing the resume..."))

			res, err := an.Analyze(ctx, args[0])
			if err != nil {
				return silent(err)
			}
			printAnalysis(os.Stdout, res)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func printAnalysis(w io.Writer, res *careerbot.Analysis) {
	if res.Summary != "" {
		fmt.Fprintf(w, "Summary:\n%s\n", res.Summary)
	}
	printList(w, "Skills", res.Skills)
	printList(w, "Recommendations", res.Recommendations)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
