package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record counts and last uploads",
	Long: `Show how many records each source holds and when each source was last
replaced.

Examples:
  # Show counts as a table
  idreconctl stats

  # Show as JSON
  idreconctl stats -o json`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	stats, err := client.Stats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, stats, func() error {
		domains := make([]string, 0, len(stats.DirectoryByDomain))
		for d := range stats.DirectoryByDomain {
			domains = append(domains, d)
		}
		sort.Strings(domains)

		pairs := [][2]string{{"Directory accounts", output.Count(stats.Directory)}}
		for _, d := range domains {
			pairs = append(pairs, [2]string{"  " + d, output.Count(stats.DirectoryByDomain[d])})
		}
		pairs = append(pairs,
			[2]string{"MFA enrollments", output.Count(stats.Mfa)},
			[2]string{"HR records", output.Count(stats.Hr)},
		)
		if err := output.SimpleTable(os.Stdout, pairs); err != nil {
			return err
		}

		if len(stats.LastUploads) == 0 {
			return nil
		}
		keys := make([]string, 0, len(stats.LastUploads))
		for k := range stats.LastUploads {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		uploads := make(views.UploadList, 0, len(keys))
		for _, k := range keys {
			uploads = append(uploads, stats.LastUploads[k])
		}
		fmt.Println()
		return output.PrintTable(os.Stdout, uploads)
	})
}
