package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/issueview/internal/app"
	"github.com/zjrosen/issueview/internal/issuelist"
	"github.com/zjrosen/issueview/internal/presentation"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active view preference and the issue list it selects",
	Long: `Print the remembered view preference of the active project and the
issue list it selects.

Examples:
  issueview show
  issueview show --project WEB -o yaml
  issueview show -o json | jq '.groups[].key'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command) error {
	s, err := openProjectSession(commandContext(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return printShow(cmd, s)
}

// printShow writes the session's preference and issue list in the format
// chosen by --output. A failed fetch is printed and then returned.
func printShow(cmd *cobra.Command, s *app.Session) error {
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}

	view := s.Binding().View()
	dto := presentation.FromView(s.Project(), cfg.User, s.Controller().State(), view)
	if err := formatter.FormatShow(dto); err != nil {
		return err
	}
	if view.Status == issuelist.StatusFailed {
		return fmt.Errorf("fetch issues: %w", view.Err)
	}
	return nil
}

func newFormatter(cmd *cobra.Command) (*presentation.Formatter, error) {
	raw, _ := cmd.Flags().GetString("output")
	format, err := presentation.ParseFormat(raw)
	if err != nil {
		return nil, err
	}
	return presentation.NewFormatter(cmd.OutOrStdout(), format), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
