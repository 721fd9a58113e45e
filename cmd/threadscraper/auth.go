package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"threadscraper/pkg/auth"
	"threadscraper/pkg/authgate"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Threads logins",
	Long: `Manage the logins used to fill the Threads login form.

Logins are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables THREADS_ID / THREADS_PASSWORD (read only)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store a Threads login",
	Long: `Store a Threads username and password in the system keychain or the
encrypted credentials file.

The password is read without echo. Use --account with scrape to pick a
stored login; without it the most recently stored one is used.`,
	Example: `  # Interactive login
  threadscraper auth login

  # Login with username
  threadscraper auth login myhandle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove a stored login",
	Long: `Remove a stored login from every backend that holds it.

Without a username the only stored login is removed after confirmation.`,
	Example: `  threadscraper auth logout myhandle`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored logins",
	Long:  `List stored logins, newest first, with masked passwords.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func credentialManager() (*auth.Manager, error) {
	manager, err := auth.NewManager()
	if err != nil {
		return nil, apperrors.Fatal("auth", "failed to initialize credential manager", err)
	}
	return manager, nil
}

// confirm asks a y/N question; anything but yes is no
func confirm(p authgate.Prompter, question string) bool {
	answer, err := p.Read(question+" (y/N): ", false)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := credentialManager()
	if err != nil {
		return err
	}
	prompter := authgate.NewTerminalPrompter()

	auth.ShowLoginGuide(ui.Output)
	fmt.Fprintln(ui.Output)

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		username, err = prompter.Read("📱 Threads username: ", false)
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return apperrors.Fatal("auth", "username is required", auth.ErrInvalidCredentials)
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		if !confirm(prompter, fmt.Sprintf("\n⚠️  Login '%s' already exists. Replace it?", username)) {
			return nil
		}
	}

	password, err := prompter.Read("🔐 Password (hidden): ", true)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return apperrors.Fatal("auth", "password is required", auth.ErrInvalidCredentials)
	}

	account := &auth.Account{
		Username:     username,
		Password:     password,
		LastModified: time.Now(),
	}
	if err := manager.Store(account); err != nil {
		return apperrors.Fatal("auth", "failed to store credentials", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Login saved: %s", username))
	fmt.Fprintln(ui.Output, "\n📖 Use it with:")
	fmt.Fprintf(ui.Output, "   $ threadscraper scrape --account %s\n", username)
	fmt.Fprintln(ui.Output, "\n⚠️  Never share your credentials or config files!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := credentialManager()
	if err != nil {
		return err
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintWarning("No stored logins found")
			return nil
		}
		if len(accounts) > 1 {
			ui.PrintWarning("Several logins are stored; name the one to remove")
			for _, acc := range accounts {
				fmt.Fprintf(ui.Output, "  - %s\n", acc.Username)
			}
			return nil
		}
		username = accounts[0].Username
		if !confirm(authgate.NewTerminalPrompter(), fmt.Sprintf("Remove login '%s'?", username)) {
			return nil
		}
	}

	if err := manager.Delete(username); err != nil {
		return fmt.Errorf("failed to remove login %s: %w", username, err)
	}
	ui.PrintSuccess(fmt.Sprintf("Login removed: %s", username))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := credentialManager()
	if err != nil {
		return err
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list logins: %w", err)
	}
	if len(accounts) == 0 {
		ui.PrintInfo("Stored logins", "none")
		fmt.Fprintln(ui.Output, "\nAdd one with 'threadscraper auth login'")
		return nil
	}

	ui.PrintHighlight("Stored logins")
	w := tabwriter.NewWriter(ui.Output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tPASSWORD\tSAVED")
	for _, acc := range accounts {
		safe := auth.SanitizeAccount(acc)
		saved := "-"
		if !safe.LastModified.IsZero() {
			saved = safe.LastModified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", safe.Username, safe.Password, saved)
	}
	return w.Flush()
}
