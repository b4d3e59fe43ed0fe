package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [toggle|dark|light|show]",
	Short:     "Show or change the color theme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"toggle", "dark", "light", "show"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()

		action := "show"
		if len(args) == 1 {
			action = args[0]
		}

		var err error
		switch action {
		case "toggle":
			_, err = a.theme.Toggle(ctx)
		case "dark":
			err = a.theme.Set(ctx, true)
		case "light":
			err = a.theme.Set(ctx, false)
		}
		if err != nil {
			return err
		}

		fmt.Printf("theme: %s\n", a.theme.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
