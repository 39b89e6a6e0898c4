// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile string
	User       string
	Output     string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// Stdout receives command output when no output file is given.
	Stdout io.Writer = os.Stdout

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fintrack",
		Short: "A ledger for personal and organizational finances.",
		Long: `fintrack keeps accounts, transactions, budgets, goals and projects
consistent, and derives dashboards, period summaries and financial reports
from them. It runs as an HTTP service or as one-shot commands.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to fintrack!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd == cmd.Root() {
				return nil
			}
			return Initialize(SharedFlags.ConfigFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer == nil {
				return
			}
			if err := appContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close container")
			}
			appContainer = nil
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default searches $HOME/.fintrack, .fintrack and .)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.User, "user", "u", "", "Acting user, by id or username")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default stdout)")
}

// Initialize loads the environment and configuration, reconfigures logging
// and builds the application container.
func Initialize(configFile string) error {
	config.LoadEnv()
	cfg, err := config.InitializeConfigFromFile(configFile)
	if err != nil {
		return err
	}
	Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))

	c, err := container.NewContainer(cfg, container.WithLogger(Log))
	if err != nil {
		return err
	}
	appContainer = c
	return nil
}

// SetContainer installs a prebuilt container. Commands run by tests use it
// in place of Initialize.
func SetContainer(c *container.Container) {
	appContainer = c
	if c != nil {
		Log = c.GetLogger()
	}
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return appContainer, nil
}

// CurrentUser resolves the --user flag.
func CurrentUser(ctx context.Context) (*models.User, error) {
	c, err := GetContainer()
	if err != nil {
		return nil, err
	}
	if SharedFlags.User == "" {
		return nil, fmt.Errorf("--user is required")
	}
	user, err := c.GetStore().ResolveUser(ctx, SharedFlags.User)
	if err != nil {
		return nil, fmt.Errorf("unknown user %q: %w", SharedFlags.User, err)
	}
	return user, nil
}

// WriteOutput writes data to the --output file, or to Stdout when no file is
// given.
func WriteOutput(data []byte) error {
	if SharedFlags.Output == "" {
		_, err := Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(SharedFlags.Output), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(SharedFlags.Output, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	Log.Info("Output written", logging.F(logging.FieldOutputFile, SharedFlags.Output))
	return nil
}
