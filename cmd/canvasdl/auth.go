package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"canvasdl/pkg/auth"
	"canvasdl/pkg/canvas"
	"canvasdl/pkg/config"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/ui"

	"github.com/spf13/cobra"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Canvas access tokens",
	Long: `Manage stored Canvas access tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables CANVASDL_API_URL and CANVASDL_API_KEY (read only)

Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a Canvas access token securely",
	Long: `Store a Canvas access token in the system keychain or an encrypted file.

You will be prompted for the Canvas URL and the token. The token is checked
against the API before it is saved. Without a profile name the token is
stored as the default profile.`,
	Example: `  # Store the default profile
  canvasdl auth login

  # Store a second school
  canvasdl auth login summer-school`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove stored tokens",
	Long: `Remove a stored profile. Without an argument you are shown a list of
stored profiles to choose from, including an option to remove all of them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE:  runList,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Check that a stored token is accepted by Canvas",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = args[0]
	}

	out := cmd.OutOrStdout()
	p := newPrompter(os.Stdin, out)

	auth.ShowTokenGuide(out)

	if existing, _ := manager.Retrieve(name); existing != nil {
		answer, _ := p.ask(fmt.Sprintf("⚠️  Profile '%s' already exists. Replace it? (y/N)", name), "")
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	instanceURL, err := p.ask("🌐 Canvas URL", "")
	if err != nil {
		return fmt.Errorf("failed to read URL: %w", err)
	}
	token, err := p.secret("🔑 Access token")
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	account := &auth.Account{
		Name:   name,
		APIURL: strings.TrimRight(instanceURL, "/"),
		APIKey: token,
	}
	if err := auth.Validate(account); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n🔍 Checking the token...")
	user, err := testCredentials(cmd.Context(), account)
	if err != nil {
		return fmt.Errorf("token rejected by Canvas: %w", err)
	}

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Saved profile '%s' for %s", name, user.Name))
	fmt.Fprintln(out, "\n📖 Next steps:")
	fmt.Fprintln(out, "   $ canvasdl sync")
	if name != auth.DefaultProfile {
		fmt.Fprintf(out, "   $ canvasdl sync --profile %s\n", name)
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if len(args) > 0 {
		if err := manager.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to remove profile: %w", err)
		}
		ui.PrintSuccess("Profile removed: " + args[0])
		return nil
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintWarning("No stored profiles found")
		return nil
	}

	out := cmd.OutOrStdout()
	p := newPrompter(os.Stdin, out)

	fmt.Fprintln(out, "Select profile to remove:")
	for i, account := range accounts {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, account.Name, account.APIURL)
	}
	fmt.Fprintf(out, "  %d. Remove all profiles\n", len(accounts)+1)
	fmt.Fprintf(out, "  0. Cancel\n\n")

	input, _ := p.ask("Choice", "0")
	var choice int
	fmt.Sscanf(input, "%d", &choice)

	switch {
	case choice == 0:
		return nil
	case choice == len(accounts)+1:
		confirm, _ := p.ask("Remove ALL profiles? This cannot be undone! (yes/N)", "")
		if confirm != "yes" {
			return nil
		}
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove all profiles: %w", err)
		}
		ui.PrintSuccess("All profiles removed")
	case choice > 0 && choice <= len(accounts):
		name := accounts[choice-1].Name
		if err := manager.Delete(name); err != nil {
			return fmt.Errorf("failed to remove profile: %w", err)
		}
		ui.PrintSuccess("Profile removed: " + name)
	default:
		return fmt.Errorf("invalid choice %q", input)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(accounts) == 0 {
		ui.PrintInfo("No stored profiles", "Use 'canvasdl auth login' to add one")
		return nil
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Stored Profiles")
	fmt.Fprintln(out)
	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(out, "%d. %s\n", i+1, sanitized.Name)
		fmt.Fprintf(out, "   Canvas: %s\n", sanitized.APIURL)
		fmt.Fprintf(out, "   Token: %s\n", sanitized.APIKey)
		fmt.Fprintf(out, "   Last Modified: %s\n\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var account *auth.Account
	if len(args) > 0 {
		account, err = manager.Retrieve(args[0])
	} else {
		account, err = manager.RetrieveDefault()
	}
	if err != nil {
		return err
	}

	ui.PrintInfo("Profile", account.Name)
	ui.PrintInfo("Canvas", account.APIURL)
	ui.PrintInfo("Token", auth.MaskString(account.APIKey))

	user, err := testCredentials(cmd.Context(), account)
	if err != nil {
		return fmt.Errorf("token check failed: %w", err)
	}
	ui.PrintSuccess(fmt.Sprintf("Token is valid for %s (user %d)", user.Name, user.ID))
	return nil
}

// testCredentials resolves the token owner with a single attempt
func testCredentials(ctx context.Context, account *auth.Account) (*canvas.User, error) {
	cfg := config.DefaultConfig()
	cfg.Canvas.APIURL = account.APIURL
	cfg.Canvas.APIKey = account.APIKey
	cfg.Canvas.RequestTimeout = 15 * time.Second
	cfg.Retry.Enabled = false

	client, err := canvas.NewClient(cfg, logger.GetLogger())
	if err != nil {
		return nil, err
	}
	return client.CurrentUser(ctx)
}
