package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/wiper/internal/history"
	"github.com/lu-zhengda/wiper/internal/utils"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show reclaim history and statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := openLedger(s).All(ctx)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		stats := history.Summarize(records)

		roots, err := s.Roots(ctx)
		if err != nil {
			return fmt.Errorf("failed to list watch roots: %w", err)
		}
		free := make(map[string]int64, len(roots))
		for _, r := range roots {
			if n, err := utils.DiskFree(r.Path); err == nil {
				free[r.Path] = n
			}
		}

		if jsonFlag {
			return printJSON(buildStatsJSON(stats, free))
		}

		fmt.Println("wiper -- Reclaim Stats")
		fmt.Println()

		fmt.Printf("  Total reclaimed all-time:  %s\n", utils.FormatSize(stats.TotalBytes))
		fmt.Printf("  Total wipes:               %d\n", stats.Wipes)

		if len(stats.ByRoot) > 0 {
			fmt.Println()
			fmt.Println("  By Root:")

			// Sort roots by bytes reclaimed descending for stable output.
			type rootEntry struct {
				path  string
				stats history.RootStats
			}
			entries := make([]rootEntry, 0, len(stats.ByRoot))
			for path, rs := range stats.ByRoot {
				entries = append(entries, rootEntry{path: path, stats: rs})
			}
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].stats.Bytes != entries[j].stats.Bytes {
					return entries[i].stats.Bytes > entries[j].stats.Bytes
				}
				return entries[i].path < entries[j].path
			})

			for _, e := range entries {
				label := "wipes"
				if e.stats.Wipes == 1 {
					label = "wipe"
				}
				fmt.Printf("    %-40s %10s  (%d %s)\n",
					truncatePath(e.path, 40), utils.FormatSize(e.stats.Bytes), e.stats.Wipes, label)
			}
		}

		if len(stats.Recent) > 0 {
			fmt.Println()
			fmt.Println("  Recent:")

			for _, r := range stats.Recent {
				label := "projects"
				if r.Projects == 1 {
					label = "project"
				}
				fmt.Printf("    %s  %-32s %3d %-8s  %10s  (%s)\n",
					r.Date.Local().Format("2006-01-02 15:04"),
					truncatePath(r.Path, 32),
					r.Projects,
					label,
					utils.FormatSize(r.Bytes),
					r.Method)
			}
		}

		if len(free) > 0 {
			fmt.Println()
			fmt.Println("  Disk Free:")
			for _, r := range roots {
				if n, ok := free[r.Path]; ok {
					fmt.Printf("    %-40s %10s\n", truncatePath(r.Path, 40), utils.FormatSize(n))
				}
			}
		}

		if stats.Wipes == 0 {
			fmt.Println("  No wipe history yet. Run 'wiper wipe <path>' to get started.")
		}

		fmt.Println()
		return nil
	},
}
