package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/issueview/internal/controller"
	"github.com/zjrosen/issueview/internal/preference"
)

var viewCmd = &cobra.Command{
	Use:       "view <list|kanban>",
	Short:     "Switch between the list and kanban layouts",
	Long:      "Switch layouts. Kanban always groups by state; switching back to list clears the grouping.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(preference.ViewList), string(preference.ViewKanban)},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, ok := preference.ParseViewMode(args[0])
		if !ok {
			return fmt.Errorf("unknown view %q (must be list or kanban)", args[0])
		}
		return mutate(cmd, func(c *controller.Controller) {
			if mode == preference.ViewKanban {
				c.SetViewModeKanban()
				return
			}
			c.SetViewModeList()
		})
	},
}

var groupCmd = &cobra.Command{
	Use:       "group <state|priority|assignees|none>",
	Short:     "Group the issue list",
	Long:      "Group the issue list. In the kanban layout only state grouping is accepted.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"state", "priority", "assignees", "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := preference.ParseGroupBy(args[0])
		if !ok {
			return fmt.Errorf("unknown grouping %q (must be state, priority, assignees or none)", args[0])
		}
		return mutate(cmd, func(c *controller.Controller) {
			if next := c.SetGroupBy(key); next.GroupBy != key {
				fmt.Fprintf(cmd.ErrOrStderr(), "grouping by %s is not available in the %s layout\n",
					strings.ToLower(key.Label()), next.ViewMode)
			}
		})
	},
}

var orderCmd = &cobra.Command{
	Use:       "order <created_at|updated_at|priority>",
	Short:     "Order the issue list",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"created_at", "updated_at", "priority"},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := preference.ParseOrderBy(args[0])
		if !ok {
			return fmt.Errorf("unknown ordering %q (must be created_at, updated_at or priority)", args[0])
		}
		return mutate(cmd, func(c *controller.Controller) { c.SetOrderBy(key) })
	},
}

var filterCmd = &cobra.Command{
	Use:       "filter <all|active|backlog>",
	Short:     "Filter the issue list by state group",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"all", "active", "backlog"},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := preference.ParseFilter(args[0])
		if !ok {
			return fmt.Errorf("unknown filter %q (must be all, active or backlog)", args[0])
		}
		return mutate(cmd, func(c *controller.Controller) { c.SetFilter(key) })
	},
}

var saveDefaultCmd = &cobra.Command{
	Use:   "save-default",
	Short: "Remember the active preference as this project's default",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(c *controller.Controller) { c.SaveAsNewDefault() })
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore this project's saved default preference",
	Long:  "Restore the saved default preference. Without a saved default nothing changes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(c *controller.Controller) { c.ResetToDefault() })
	},
}

func init() {
	rootCmd.AddCommand(viewCmd, groupCmd, orderCmd, filterCmd, saveDefaultCmd, resetCmd)
}

// mutate attaches to the active project, waits for the remembered
// preference, applies fn, waits for the result to be saved and the list to
// be refetched, then prints the outcome.
func mutate(cmd *cobra.Command, fn func(c *controller.Controller)) error {
	ctx := commandContext(cmd)
	s, err := openProjectSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	fn(s.Controller())

	if err := settle(ctx, s); err != nil {
		return err
	}
	return printShow(cmd, s)
}
