package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/format"
	"taskdeck/internal/logging"
	"taskdeck/internal/router"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
	"taskdeck/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	APIURL     string
	Dir        string
	LogLevel   string
	Format     string
	PrettyJSON bool
	StartPath  string

	cfg     *config.Config
	log     *log.Logger
	logFile io.Closer
	session *session.Service
	client  *api.Client
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "taskdeck",
		Short:         "Task list client (TUI + scriptable CLI)",
		SilenceUsage:  true,
		SilenceErrors: true, // failures are written by writeErr; main prints the rest
		Example: strings.TrimSpace(`
  # Start the interactive TUI (task list, or login when signed out)
  taskdeck

  # Open a specific page
  taskdeck /signup

  # Scriptable commands
  taskdeck login --username alice --password 'abc12!'
  taskdeck tasks list
  taskdeck tasks create --title "Write report" --description "Q3 numbers"
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := format.Parse(app.Format); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TASKDECK_CONFIG", ""), "Path to config.toml (default: $TASKDECK_CONFIG_DIR/config.toml or ~/.taskdeck/config.toml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "API base URL (overrides TASKDECK_API_URL and the config file)")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data dir holding the session store and log (overrides TASKDECK_DIR)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKDECK_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.Flags().StringVar(&app.StartPath, "path", router.PathTasks, "Page to open in the TUI (/tasks, /login, /signup)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	if err := app.setup(); err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), tui.Options{
		API:       app.client,
		Session:   app.session,
		Logger:    app.log,
		StartPath: app.StartPath,
	})
}

func (app *App) loadConfig() (*config.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}
	cfg, err := config.Load(app.ConfigPath, config.Overrides{
		APIURL:   app.APIURL,
		DataDir:  app.Dir,
		LogLevel: app.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	app.cfg = cfg
	return cfg, nil
}

// setup wires config, the log file, the session store and the API client.
func (app *App) setup() error {
	if app.client != nil {
		return nil
	}
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}

	st := store.Store{Dir: cfg.DataDir}
	if err := st.Ensure(); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	logger, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	app.log, app.logFile = logger, closer

	app.session = session.NewService(st, logger)
	client, err := api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
		api.WithTokenProvider(app.session),
	)
	if err != nil {
		return err
	}
	app.client = client
	logger.Debug("setup", "api_url", client.BaseURL(), "data_dir", cfg.DataDir)
	return nil
}

func (app *App) close() error {
	if app.logFile == nil {
		return nil
	}
	err := app.logFile.Close()
	app.logFile = nil
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut wraps v in the {"data": ...} envelope.
func writeOut(cmd *cobra.Command, app *App, v any) error {
	f, err := format.Parse(app.Format)
	if err != nil {
		return err
	}
	return format.Write(cmd.OutOrStdout(), format.Wrap(v), f, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reportedError{err: err}
}

// apiFailure describes a failed call with the server's message when there is one.
func apiFailure(what string, err error) error {
	if errors.Is(err, api.ErrNoSession) {
		return fmt.Errorf("%s: %w (run `taskdeck login`)", what, err)
	}
	if msg := api.MessageOr(err, ""); msg != "" {
		return fmt.Errorf("%s: %s", what, msg)
	}
	return fmt.Errorf("%s: %w", what, err)
}
