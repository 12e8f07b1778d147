package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/issueview/internal/config"
)

var useCmd = &cobra.Command{
	Use:   "use <project>",
	Short: "Select the active project",
	Long: `Select the active project by id or identifier and remember it in the
config file. Later commands operate on it unless --project is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Project = args[0]
		s, err := openSession(commandContext(cmd), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		project := s.Project()
		if err := config.SaveProject(configPath, project.ID); err != nil {
			return fmt.Errorf("remember project: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using project %s (%s)\n", project.Identifier, project.Name)
		return printShow(cmd, s)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
