package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/issueview/internal/issues"
	"github.com/zjrosen/issueview/internal/preference"
	"github.com/zjrosen/issueview/internal/presentation"
)

// projectDTO is a project with the user's remembered preference for it.
type projectDTO struct {
	issues.ProjectSummary `yaml:",inline"`
	Remembered            *presentation.PreferenceDTO `json:"remembered,omitempty" yaml:"remembered,omitempty"`
	Default               *presentation.PreferenceDTO `json:"default,omitempty" yaml:"default,omitempty"`
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	Long: `List every project in the database. The active project is marked
with '*'. Structured output also carries the remembered preference of each
project for the current user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		// Listing never needs an attached project.
		c := cfg
		c.Project = ""
		s, err := openSession(ctx, c)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		projects, err := s.Projects(ctx)
		if err != nil {
			return err
		}

		formatter, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		if formatter.IsText() {
			return formatter.FormatProjects(projects, cfg.Project)
		}

		out := make([]projectDTO, len(projects))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i, p := range projects {
			out[i].ProjectSummary = p
			g.Go(func() error {
				rem, err := s.Remembered(gctx, p.ID)
				if errors.Is(err, preference.ErrNotFound) {
					return nil
				}
				if err != nil {
					return err
				}
				out[i].Remembered = snapshotDTO(rem.Current)
				out[i].Default = snapshotDTO(rem.Default)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return formatter.Encode(out)
	},
}

func snapshotDTO(s *preference.Snapshot) *presentation.PreferenceDTO {
	if s == nil {
		return nil
	}
	dto := presentation.FromState(s.State())
	return &dto
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
