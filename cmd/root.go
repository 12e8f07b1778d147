package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/issueview/internal/app"
	"github.com/zjrosen/issueview/internal/config"
	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/tracing"
)

// settleTimeout bounds how long a command waits for the remembered
// preference, the issue list and pending saves.
const settleTimeout = 30 * time.Second

var (
	version    = "dev"
	cfgFile    string
	debugMode  bool
	cfg        config.Config
	configPath string
	provider   = tracing.Noop()
	cleanups   []func()
)

var rootCmd = &cobra.Command{
	Use:   "issueview",
	Short: "Remembered issue list views per project",
	Long: `issueview keeps a per-user, per-project view preference for an issue
list (list or kanban layout, grouping, ordering and filter), remembers it in
a local SQLite database and prints the issue list it selects.`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd)
	},
}

func init() {
	// Assigned here rather than in the literal: setup refers to rootCmd.
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentPostRunE = teardown
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/issueview/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database")
	rootCmd.PersistentFlags().StringP("project", "p", "", "project id or identifier")
	rootCmd.PersistentFlags().StringP("user", "u", "", "user id that scopes remembered preferences")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false,
		"write debug logs to issueview-debug.log")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text, yaml or json")
}

func setup(cmd *cobra.Command, _ []string) error {
	if debugMode || os.Getenv("ISSUEVIEW_DEBUG") != "" {
		logPath := filepath.Join(os.TempDir(), "issueview-debug.log")
		cleanup, err := log.InitWithTeaLog(logPath, "issueview")
		if err != nil {
			return fmt.Errorf("init debug log: %w", err)
		}
		cleanups = append(cleanups, cleanup)
		log.Info(log.CatApp, "debug logging enabled", "path", logPath, "command", cmd.Name())
	}

	configPath = cfgFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	v := viper.New()
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("db_path", flags.Lookup("db"))
	_ = v.BindPFlag("project", flags.Lookup("project"))
	_ = v.BindPFlag("user", flags.Lookup("user"))
	v.SetEnvPrefix("issueview")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loaded, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	p, err := tracing.NewProvider(cfg.Tracing.Provider())
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	provider = p
	return nil
}

func teardown(*cobra.Command, []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := provider.Shutdown(ctx)
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
	return err
}

// openSession opens the database and project of c and waits for the
// remembered preference and the first issue list.
func openSession(ctx context.Context, c config.Config) (*app.Session, error) {
	s, err := app.Open(ctx, c, provider.Tracer())
	if err != nil {
		return nil, err
	}
	if err := settle(ctx, s); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// openProjectSession is openSession for commands that need a project.
func openProjectSession(ctx context.Context) (*app.Session, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("no project selected: run 'issueview use <project>' or pass --project")
	}
	return openSession(ctx, cfg)
}

// settle waits until queued loads and saves are done and the issue list
// reflects the latest preference.
func settle(ctx context.Context, s *app.Session) error {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	if err := s.Controller().WaitIdle(ctx); err != nil {
		return fmt.Errorf("waiting for preference sync: %w", err)
	}
	if _, err := s.Binding().Await(ctx); err != nil {
		return fmt.Errorf("waiting for issue list: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
