package cmd

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/issueview/internal/follow"
	"github.com/zjrosen/issueview/internal/log"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the issue list on screen and redraw it as it changes",
	Long: `Show the active view preference and its issue list, redrawing whenever
the preference changes or another process writes the database.

Keys: k kanban, l list, s save as default, d reset to default,
r refresh, q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	s, err := openProjectSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	model := follow.New(ctx, follow.Config{
		Project:     s.Project(),
		User:        cfg.User,
		Preferences: s.Controller(),
		List:        s.Binding(),
		Logs:        log.NewListener(ctx),
	})
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
