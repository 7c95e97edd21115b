package main

import (
	"fmt"
	"os"
	"path/filepath"

	"canvasdl/pkg/auth"
	"canvasdl/pkg/config"
	"canvasdl/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage canvasdl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (CANVASDL_*), including .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'canvasdl.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.
The API key is masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value ranges
  - Credentials
  - Path accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# canvasdl configuration file
#
# Values can also be set with environment variables prefixed with CANVASDL_,
# for example CANVASDL_API_URL, CANVASDL_API_KEY and CANVASDL_SAVE_PATH.

canvas:
  # Address of your Canvas instance
  api_url: "https://canvas.instructure.com"

  # Personal access token (Account > Settings > New Access Token).
  # Prefer 'canvasdl auth login' over storing it here.
  api_key: ""

  # Page size for list requests (1-100)
  per_page: 100

  # Timeout for a single API request
  request_timeout: 30s

output:
  # Directory course trees are created in
  save_path: "./courses"

  # File recording finished course ids.
  # Leave empty for the default in the user data directory.
  skip_list: ""

download:
  # Timeout for a single file transfer
  timeout: 10m

  # Files larger than this many bytes are not downloaded (0 = unlimited)
  max_file_size: 0

# Retries of transient API failures (network errors, 5xx responses)
retry:
  enabled: true
  max_attempts: 3
  initial_backoff: 1s
  max_backoff: 30s
  multiplier: 2.0

logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log format: text, json
  format: "text"

  # Log file path (optional). Leave empty to log to stderr.
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "canvasdl.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(cmd.OutOrStdout(), "  rm %s\n", configPath)
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Set api_url to your Canvas address")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'canvasdl auth login' to store your access token")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Run 'canvasdl config validate' to check the configuration")
	fmt.Fprintln(cmd.OutOrStdout(), "4. Start downloading with 'canvasdl sync'")
	return nil
}

// maskedConfig returns a copy of cfg that is safe to print
func maskedConfig(cfg *config.Config) config.Config {
	display := *cfg
	if display.Canvas.APIKey != "" {
		display.Canvas.APIKey = auth.MaskString(display.Canvas.APIKey)
	}
	return display
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	display := maskedConfig(cfg)
	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (CANVASDL_*)")
	if configFile != "" {
		fmt.Fprintf(out, "3. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(out, "3. Configuration file: (searched in standard locations)")
	}
	fmt.Fprintln(out, "4. Default values")
	return nil
}

// checkConfig returns problems that make cfg unusable and warnings that
// do not
func checkConfig(cfg *config.Config) (problems, warnings []string) {
	if err := cfg.ValidateCredentials(); err != nil {
		warnings = append(warnings, fmt.Sprintf("credentials incomplete (%v); a stored profile will be used", err))
	}

	if cfg.Output.SavePath != "" {
		if err := os.MkdirAll(cfg.Output.SavePath, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create save path: %v", err))
		}
	}
	if cfg.Output.SkipList != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.SkipList), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create skip list directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}
	return problems, warnings
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		for _, candidate := range []string{
			"canvasdl.yaml",
			".canvasdl.yaml",
			"creds.yaml",
			filepath.Join(os.Getenv("HOME"), ".config", "canvasdl", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".canvasdl.yaml"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return fmt.Errorf("no configuration file found; specify one with --config")
		}
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	problems, warnings := checkConfig(cfg)
	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return fmt.Errorf("%d configuration errors", len(problems))
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
		fmt.Fprintln(out)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Canvas: %s\n", cfg.Canvas.APIURL)
	fmt.Fprintf(out, "  Save path: %s\n", cfg.Output.SavePath)
	fmt.Fprintf(out, "  Max file size: %d\n", cfg.Download.MaxFileSize)
	fmt.Fprintf(out, "  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
