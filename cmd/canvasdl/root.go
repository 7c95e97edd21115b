package main

import (
	"fmt"
	"os"
	"runtime"

	"canvasdl/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canvasdl",
	Short: "Mirror your Canvas LMS course materials to disk",
	Long: `canvasdl downloads the files of every course you are enrolled in from a
Canvas LMS instance into a local directory tree:

  <save path>/<course>/Modules/<module>/...
  <save path>/<course>/Assignments/<assignment>/...
  <save path>/<course>/<folder>/...

Files already on disk are never downloaded again, and finished courses are
recorded in a skip list so later runs only pick up new courses.

Running canvasdl without a subcommand is the same as 'canvasdl sync'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetNoColor(noColor || os.Getenv("NO_COLOR") != "")
		if quiet {
			ui.SetQuietMode(true)
		}

		switch cmd.Name() {
		case "version", "help", "show", "path":
		default:
			ui.PrintLogo()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context())
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./canvasdl.yaml or $HOME/.config/canvasdl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a line for every file")

	addSyncFlags(rootCmd)

	rootCmd.SetVersionTemplate(`canvasdl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
