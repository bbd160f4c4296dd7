package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/collection"
	"github.com/Zachkp/portfolio/internal/content"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List portfolio projects under a filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		p, err := content.Load()
		if err != nil {
			return err
		}
		return printProjects(cmd.OutOrStdout(), p, filter)
	},
}

func printProjects(w io.Writer, p *content.Portfolio, filter string) error {
	projects, err := p.ProjectCollection()
	if err != nil {
		return err
	}
	if !projects.Declared(filter) {
		keys := make([]string, 0, len(projects.Filters()))
		for _, f := range projects.Filters() {
			keys = append(keys, f.Key)
		}
		return fmt.Errorf("unknown filter %q (available: %s)", filter, strings.Join(keys, ", "))
	}
	for _, pr := range projects.View(filter) {
		star := " "
		if pr.Featured {
			star = "*"
		}
		fmt.Fprintf(w, "%s %d\t%-10s %s\n", star, pr.ID, pr.Category, pr.Title)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.Flags().StringP("filter", "f", collection.All, "filter key (all, featured or a category)")
}
