package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check the embedded portfolio content for broken links",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := content.Load()
		if err != nil {
			return err
		}
		problems := p.Lint()
		for _, pr := range problems {
			logging.Log.WithField("where", pr.Where).WithField("url", pr.URL).Error(pr.Err)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d link problem(s) found", len(problems))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "content ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
