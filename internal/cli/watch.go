package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/wiper/internal/utils"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage watch roots",
	Long:  "Watch roots are the directories wiper scans when no path is given,\nand the ones listed in the TUI.",
}

var watchAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a watch root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveDir(args[0])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.AddRoot(cmdContext(cmd), root); err != nil {
			return fmt.Errorf("failed to add watch root: %w", err)
		}
		fmt.Printf("Watching %s\n", root)
		return nil
	},
}

var watchRemoveCmd = &cobra.Command{
	Use:     "remove <path>",
	Aliases: []string{"rm"},
	Short:   "Remove a watch root",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The directory may already be gone; only normalize the path.
		root, err := utils.ExpandPath(args[0])
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", args[0], err)
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		removed, err := s.RemoveRoot(cmdContext(cmd), root)
		if err != nil {
			return fmt.Errorf("failed to remove watch root: %w", err)
		}
		if !removed {
			return fmt.Errorf("not a watch root: %s", root)
		}
		fmt.Printf("Stopped watching %s\n", root)
		return nil
	},
}

var watchListSizes bool

var watchListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List watch roots",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		roots, err := s.Roots(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to list watch roots: %w", err)
		}
		var sizes map[string]int64
		if watchListSizes {
			paths := make([]string, 0, len(roots))
			for _, r := range roots {
				paths = append(paths, r.Path)
			}
			sizes = utils.DirSizesParallel(cmdContext(cmd), paths, currentConfig().ScanConcurrency())
		}

		if jsonFlag {
			return printJSON(buildRootsJSON(roots, sizes))
		}
		if len(roots) == 0 {
			fmt.Println("No watch roots. Add one with 'wiper watch add <path>'.")
			return nil
		}
		for _, r := range roots {
			line := fmt.Sprintf("  %-50s added %-16s", truncatePath(r.Path, 50), utils.TimeAgo(r.AddedAt))
			if size, ok := sizes[r.Path]; ok {
				line += fmt.Sprintf(" %10s", utils.FormatSize(size))
			}
			fmt.Println(line)
		}
		return nil
	},
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	watchCmd.AddCommand(watchAddCmd)
	watchCmd.AddCommand(watchRemoveCmd)
	watchCmd.AddCommand(watchListCmd)
	watchListCmd.Flags().BoolVar(&watchListSizes, "sizes", false, "Also measure the total size of each root")
}
