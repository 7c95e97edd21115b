package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"canvasdl/pkg/auth"
	"canvasdl/pkg/canvas"
	"canvasdl/pkg/checkpoint"
	"canvasdl/pkg/config"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/mirror"
	"canvasdl/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Sync command flags
	outputDir      string
	apiURL         string
	skipListPath   string
	ignoreSkipList bool
	maxFileSize    int64
	profileName    string
	notify         bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download materials of every course not yet in the skip list",
	Long: `Download the files of every course you are enrolled in.

Files are collected from module items, files linked from module pages and
assignment descriptions, and the course files area. Videos are skipped.
A file that already exists at its target path is not downloaded
again.

Each course that could be walked to the end is appended to the skip list
and is not visited by later runs. Use --ignore-skip-list to walk every
course again; existing files are still left alone.

Credentials are taken from, in order:
  - --api-url and the CANVASDL_API_KEY environment variable
  - the configuration file
  - credentials stored with 'canvasdl auth login'`,
	Example: `  # Mirror into the default ./courses directory
  canvasdl sync

  # Mirror into a specific directory
  canvasdl sync --output ~/School

  # Look at every course again, including finished ones
  canvasdl sync --ignore-skip-list

  # Skip files larger than 200 MiB
  canvasdl sync --max-file-size 209715200`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	addSyncFlags(syncCmd)
}

// addSyncFlags registers the sync flags on cmd. The root command carries
// them too so that a bare 'canvasdl' behaves like 'canvasdl sync'.
func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory course trees are created in (default ./courses)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Canvas instance URL, e.g. https://canvas.school.edu")
	cmd.Flags().StringVar(&skipListPath, "skip-list", "", "file recording finished course ids")
	cmd.Flags().BoolVar(&ignoreSkipList, "ignore-skip-list", false, "walk courses already recorded in the skip list")
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (0 means unlimited)")
	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "use a specific stored credential profile")
	cmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
}

// syncFlags collects the command line overrides for config.Load
func syncFlags() map[string]interface{} {
	return map[string]interface{}{
		"api-url":       apiURL,
		"output":        outputDir,
		"skip-list":     skipListPath,
		"max-file-size": maxFileSize,
		"log-level":     logLevel,
	}
}

// loadConfig loads the configuration and initializes the global logger
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	// Console logs would interleave with the status lines
	if logLevel == "" && !verbose && cfg.Logging.File == "" {
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// resolveCredentials fills in the API URL and key from the credential
// store when the configuration does not carry both. It returns a
// description of where they came from.
func resolveCredentials(cfg *config.Config, manager *auth.Manager, profile string) (string, error) {
	if profile == "" && cfg.Canvas.APIKey != "" && cfg.Canvas.APIURL != "" {
		return "configuration", nil
	}

	var (
		account *auth.Account
		err     error
	)
	if profile != "" {
		account, err = manager.Retrieve(profile)
	} else {
		account, err = manager.RetrieveDefault()
	}
	if err != nil {
		return "", err
	}

	if cfg.Canvas.APIURL == "" || profile != "" {
		cfg.Canvas.APIURL = account.APIURL
	}
	cfg.Canvas.APIKey = account.APIKey
	return "profile " + account.Name, nil
}

// newClient resolves credentials and builds the Canvas client
func newClient(cfg *config.Config, profile string) (*canvas.Client, error) {
	manager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Warn("Credential store unavailable")
		manager = auth.NewManagerWithStores(auth.NewEnvironmentStore())
	}

	source, err := resolveCredentials(cfg, manager, profile)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			fmt.Fprintln(os.Stderr, "\nTo store a Canvas access token, run:")
			fmt.Fprintln(os.Stderr, "  canvasdl auth login")
			fmt.Fprintln(os.Stderr, "\nOr set environment variables:")
			fmt.Fprintf(os.Stderr, "  export %s=https://canvas.school.edu\n", auth.EnvAPIURL)
			fmt.Fprintf(os.Stderr, "  export %s=your_token\n\n", auth.EnvAPIKey)
			return nil, errors.New("no Canvas credentials found")
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	logger.WithField("source", source).Info("Using credentials")

	return canvas.NewClient(cfg, logger.GetLogger())
}

// openSkipList returns the skip list at the configured path or the default
// location in the user data directory
func openSkipList(cfg *config.Config) (*checkpoint.SkipList, error) {
	var (
		list *checkpoint.SkipList
		err  error
	)
	if cfg.Output.SkipList != "" {
		list = checkpoint.NewSkipList(cfg.Output.SkipList)
	} else {
		list, err = checkpoint.NewDefaultSkipList()
		if err != nil {
			return nil, fmt.Errorf("failed to locate skip list: %w", err)
		}
	}
	list.SetLogger(logger.GetLogger())
	return list, nil
}

// signalContext cancels on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runSync(parent context.Context) error {
	cfg, err := loadConfig(syncFlags())
	if err != nil {
		return err
	}
	logger.WithField("version", version).Info("canvasdl starting")

	client, err := newClient(cfg, profileName)
	if err != nil {
		return err
	}

	skipList, err := openSkipList(cfg)
	if err != nil {
		return err
	}

	ui.PrintInfo("Canvas", client.BaseURL())
	ui.PrintInfo("Output", cfg.Output.SavePath)
	ui.PrintInfo("Skip list", skipList.Path())
	if cfg.Download.MaxFileSize > 0 {
		ui.PrintInfo("Max file size", fmt.Sprintf("%d bytes", cfg.Download.MaxFileSize))
	}

	ctx, stop := signalContext(parent)
	defer stop()

	reporter := ui.NewStatusReporter(nil, verbose)
	driver := mirror.NewDriver(client, mirror.Options{
		Root:           cfg.Output.SavePath,
		MaxFileSize:    cfg.Download.MaxFileSize,
		SkipList:       skipList,
		IgnoreSkipList: ignoreSkipList,
		Reporter:       reporter,
		Logger:         logger.GetLogger(),
	})

	start := time.Now()
	summary, err := driver.Run(ctx)
	reporter.Complete(summary)
	logger.WithFields(map[string]interface{}{
		"duration":   time.Since(start).String(),
		"downloaded": summary.Files.Downloaded,
		"failed":     summary.Files.Failed,
	}).Info("Sync finished")

	if notify {
		ui.NewNotifier().RunFinished(summary, err)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Interrupted; finished courses are recorded, run again to continue")
			return nil
		}
		return err
	}

	if summary.Files.Failed > 0 {
		ui.PrintWarning(fmt.Sprintf("%d files failed; run again to retry them", summary.Files.Failed))
	} else {
		ui.PrintSuccess("All courses are up to date")
	}
	return nil
}
