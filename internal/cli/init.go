package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize planner in the current directory",
		Long: `Create the project configuration (.planner/config.toml) and, for the
json backend, an empty local task store.

Running init again is harmless: an existing config file is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitProjectUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitProjectInput{
				ProjectDir: c.Config.ProjectDir,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.ConfigCreated {
				_, _ = fmt.Fprintf(w, "Created %s\n", out.ConfigPath)
			} else {
				_, _ = fmt.Fprintf(w, "Config already exists: %s\n", out.ConfigPath)
			}
			if out.StoreInitialized {
				_, _ = fmt.Fprintln(w, "Initialized local task store")
			}
			if out.GitignoreNeedsAdd {
				_, _ = fmt.Fprintln(w, "Hint: add .planner/ to your .gitignore")
			}
			return nil
		},
	}
}
