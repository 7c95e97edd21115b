package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"canvasdl/pkg/auth"
	"canvasdl/pkg/canvas"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/mirror"
	"canvasdl/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// interactiveCmd represents the interactive command
var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Prompt for credentials and a save path, then download everything",
	Long: `Prompt for the Canvas URL, an access token and a save path, then download
every course with live status output.

Interactive runs do not read or write the skip list, so every course is
walked. Files already on disk are still left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// prompter reads answers from a line reader
type prompter struct {
	in  *bufio.Reader
	out io.Writer

	// tty and fd are set when answers come from a terminal
	tty bool
	fd  int
}

// newPrompter reads answers from in. On a terminal the reader is fed one
// byte at a time, so nothing past the current line is buffered ahead of a
// password read on the same descriptor.
func newPrompter(in *os.File, out io.Writer) *prompter {
	p := &prompter{out: out}
	var r io.Reader = in
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		p.tty, p.fd = true, fd
		r = byteReader{r: in}
	}
	p.in = bufio.NewReader(r)
	return p
}

// byteReader returns at most one byte per Read
type byteReader struct {
	r io.Reader
}

func (b byteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return b.r.Read(p)
}

// ask prints question and returns the trimmed answer, or def when empty
func (p *prompter) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	input, err := p.line()
	if err != nil {
		return "", err
	}
	if answer := strings.TrimSpace(input); answer != "" {
		return answer, nil
	}
	return def, nil
}

// secret reads a value without echo when answers come from a terminal
func (p *prompter) secret(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	if p.tty && p.in.Buffered() == 0 {
		value, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(value)), nil
	}
	input, err := p.line()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// line reads one line. A final line without a newline is accepted.
func (p *prompter) line() (string, error) {
	input, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return input, nil
}

func runInteractive(cmd *cobra.Command) error {
	cfg, err := loadConfig(map[string]interface{}{"log-level": logLevel})
	if err != nil {
		return err
	}

	p := newPrompter(os.Stdin, cmd.OutOrStdout())

	defURL := cfg.Canvas.APIURL
	if defURL == "" {
		defURL = "https://canvas.instructure.com"
	}
	if cfg.Canvas.APIURL, err = p.ask("Canvas URL", defURL); err != nil {
		return fmt.Errorf("failed to read URL: %w", err)
	}

	if cfg.Canvas.APIKey == "" {
		auth.ShowQuickTokenGuide(cmd.OutOrStdout())
	}
	token, err := p.secret("Access token (leave empty to keep the configured one)")
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token != "" {
		cfg.Canvas.APIKey = token
	}

	if cfg.Output.SavePath, err = p.ask("Save path", cfg.Output.SavePath); err != nil {
		return fmt.Errorf("failed to read save path: %w", err)
	}

	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}
	client, err := canvas.NewClient(cfg, logger.GetLogger())
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	reporter := ui.NewStatusReporter(nil, true)
	driver := mirror.NewDriver(client, mirror.Options{
		Root:        cfg.Output.SavePath,
		MaxFileSize: cfg.Download.MaxFileSize,
		Reporter:    reporter,
		Logger:      logger.GetLogger(),
	})

	ui.PrintHighlight("Downloading...")
	summary, err := driver.Run(ctx)
	reporter.Complete(summary)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Done")
	return nil
}
