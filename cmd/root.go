package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quocvuong92/fastgpt-cli/internal/api"
	"github.com/quocvuong92/fastgpt-cli/internal/config"
	"github.com/quocvuong92/fastgpt-cli/internal/constants"
	"github.com/quocvuong92/fastgpt-cli/internal/display"
	"github.com/quocvuong92/fastgpt-cli/internal/logging"
	"github.com/quocvuong92/fastgpt-cli/internal/session"
)

// errQueryFailed marks a failed one-shot query whose error was already printed
var errQueryFailed = errors.New("query failed")

// App holds the application state
type App struct {
	cfg    *config.Config
	store  *config.Store
	logger *logging.Logger

	// Key management flags
	setAPIKey   string
	showAPIKey  bool
	resetAPIKey bool
	setup       bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// terminal reports whether stdin and stdout are attached to a TTY
	terminal func() bool
	// newExecutor builds the query executor once config is final
	newExecutor func(cfg *config.Config, logger *logging.Logger) api.QueryExecutor
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg:    config.NewConfig(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		terminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		newExecutor: func(cfg *config.Config, logger *logging.Logger) api.QueryExecutor {
			return api.NewFastGPTClient(cfg, logger)
		},
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()
	if err := app.newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errQueryFailed) {
			display.NewPrinter(app.errOut, nil).Error(err)
		}
		os.Exit(1)
	}
}

func (app *App) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName + " [query...]",
		Short: "A command-line client for the Kagi FastGPT API",
		Long: `fastgpt is a command-line client for the Kagi FastGPT question-answering API.

Without a query it starts an interactive session that keeps conversation
history and can attach local files as context.

Examples:
  fastgpt --set-api-key YOUR_KEY
  fastgpt "What is the capital of France?"
  fastgpt                          # Interactive session
  fastgpt --json "Explain TCP"     # Raw JSON response
  fastgpt -r                       # Interactive with markdown rendering`,
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, args)
		},
	}
	rootCmd.SetIn(app.in)
	rootCmd.SetOut(app.out)
	rootCmd.SetErr(app.errOut)

	rootCmd.Flags().StringVar(&app.setAPIKey, "set-api-key", "", "Set API key (saved for future use)")
	rootCmd.Flags().BoolVar(&app.showAPIKey, "show-api-key", false, "Show the stored API key (masked)")
	rootCmd.Flags().BoolVar(&app.resetAPIKey, "reset-api-key", false, "Remove the stored API key")
	rootCmd.Flags().BoolVar(&app.setup, "config", false, "Interactively create the config file")
	rootCmd.Flags().BoolVar(&app.cfg.Cache, "cache", constants.DefaultCache, "Allow cached responses")
	rootCmd.Flags().BoolVar(&app.cfg.JSON, "json", false, "Output the raw JSON response")
	rootCmd.Flags().BoolVar(&app.cfg.References, "references", constants.DefaultReferences, "Show references under answers")
	rootCmd.Flags().BoolVarP(&app.cfg.Render, "render", "r", false, "Render markdown with colors and formatting")
	rootCmd.Flags().BoolVarP(&app.cfg.Verbose, "verbose", "v", false, "Log requests and session events to stderr")

	return rootCmd
}

func (app *App) run(cmd *cobra.Command, args []string) error {
	app.logger = logging.New(logging.Options{Level: logging.LevelNone, Output: app.errOut})
	if app.cfg.Verbose {
		app.logger.SetLevel(logging.LevelDebug)
	}
	log := app.logger.With("cli")

	if app.store == nil {
		store, err := config.DefaultStore()
		if err != nil {
			return err
		}
		app.store = store
	}
	log.Debug("config file", logging.Fields{"path": app.store.Path()})

	printer := display.NewPrinter(app.out, nil)

	if handled, err := app.handleKeyFlags(printer); handled || err != nil {
		return err
	}

	fc, err := app.store.Load()
	if err != nil {
		return err
	}
	app.cfg.ApplyFileConfig(fc, config.Overrides{
		Cache:      cmd.Flags().Changed("cache"),
		References: cmd.Flags().Changed("references"),
	})
	app.cfg.ApplyEnvOverrides()
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	if app.cfg.Render {
		renderer, err := display.NewRenderer(80)
		if err != nil {
			log.Warn("markdown renderer unavailable", logging.Fields{"error": err.Error()})
		} else {
			printer = display.NewPrinter(app.out, renderer)
		}
	}

	terminal := app.terminal()
	sess := session.New(session.Options{
		Config:        app.cfg,
		Executor:      app.newExecutor(app.cfg, app.logger),
		Printer:       printer,
		Logger:        app.logger,
		Terminal:      terminal && !app.cfg.JSON,
		SpinnerOutput: app.errOut,
	})
	log.Debug("session started", logging.Fields{
		"id":         sess.ID(),
		"cache":      app.cfg.Cache,
		"references": app.cfg.References,
		"json":       app.cfg.JSON,
		"tty":        terminal,
	})

	ctx := context.Background()

	if len(args) > 0 {
		if err := sess.Ask(ctx, strings.Join(args, " ")); err != nil {
			return errQueryFailed
		}
		return nil
	}

	if terminal {
		app.runInteractive(ctx, sess)
		return nil
	}
	return sess.Run(ctx, session.NewScannerReader(app.in))
}
