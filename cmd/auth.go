package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/careerbot/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the careerbot backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()
		return login(ctx, a, cmd.Flag("login-id").Value.String())
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a careerbot account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()
		return signup(ctx, a, cmd.Flag("login-id").Value.String(), cmd.Flag("name").Value.String())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.close()

		svc := auth.NewService(a.client, a.session, a.notifier, a.logger)
		defer svc.Close()
		return svc.Logout(ctx)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := newApp(cmd.Context())
		defer a.close()

		current := a.session.Current()
		if !current.IsAuthenticated || current.User == nil {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s (%s)\n", current.User.Name, current.User.ID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("login-id", "u", "", "login ID, asked interactively when empty")
	signupCmd.Flags().StringP("login-id", "u", "", "login ID, asked interactively when empty")
	signupCmd.Flags().StringP("name", "n", "", "display name, asked interactively when empty")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func login(ctx context.Context, a *application, loginID string) error {
	var err error
	if loginID == "" {
		if loginID, err = askLine("Login ID"); err != nil {
			return err
		}
	}

	password, err := askSecret("Password")
	if err != nil {
		return err
	}

	svc := auth.NewService(a.client, a.session, a.notifier, a.logger)
	defer svc.Close()

	// Failures were already shown by the notifier.
	if _, err := svc.Login(ctx, auth.LoginForm{LoginID: loginID, Password: password}); err != nil {
		return silent(err)
	}
	return nil
}

func signup(ctx context.Context, a *application, loginID, name string) error {
	form := auth.SignupForm{LoginID: loginID, UserName: name}

	var err error
	if form.LoginID == "" {
		if form.LoginID, err = askLine("Login ID"); err != nil {
			return err
		}
	}
	if form.UserName == "" {
		if form.UserName, err = askLine("Name"); err != nil {
			return err
		}
	}
	if form.Password, err = askSecret("Password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = askSecret("Confirm password"); err != nil {
		return err
	}

	svc := auth.NewService(a.client, a.session, a.notifier, a.logger)
	defer svc.Close()

	loggedIn, err := svc.Signup(ctx, form)
	if err != nil {
		return silent(err)
	}
	if !loggedIn {
		fmt.Printf("Run `%s login` to continue.\n", app)
	}
	return nil
}
