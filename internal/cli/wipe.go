package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/wiper/internal/reclaim"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/utils"
)

var (
	wipePermanent bool
	wipeYes       bool
	wipeDryRun    bool
)

var wipeCmd = &cobra.Command{
	Use:   "wipe <path>",
	Short: "Move every node_modules under a path to the Trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)

		root, err := resolveDir(args[0])
		if err != nil {
			return err
		}
		if jsonFlag && !wipeDryRun && !shouldSkipConfirm(wipeYes) {
			return fmt.Errorf("--json requires --yes or --dry-run")
		}

		if !jsonFlag {
			fmt.Printf("Scanning %s...\n", root)
		}
		e, err := loadEngine(ctx, root)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		finds := e.Finds()
		modules := scanner.ModulesSize(finds)
		count := countModules(finds)

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		x := newExecutor(openLedger(s), wipePermanent, wipeDryRun)

		if modules == 0 {
			// Nothing to move, but a real run is still recorded.
			var res reclaim.Result
			if !wipeDryRun {
				res, err = e.Reclaim(ctx, x)
			}
			if jsonFlag {
				if jerr := printJSON(buildWipeJSON(root, res, wipeDryRun, err)); jerr != nil {
					return jerr
				}
				return err
			}
			fmt.Println("All clear. Nothing to wipe!")
			return err
		}

		if !jsonFlag {
			printScanResults(root, finds)
		}

		if wipeDryRun {
			res, err := x.Reclaim(ctx, root, finds)
			if jsonFlag {
				return printJSON(buildWipeJSON(root, res, true, err))
			}
			action := "move"
			if wipePermanent {
				action = "permanently delete"
			}
			fmt.Printf("\n[DRY RUN] Would %s %d node_modules (%s).\n", action, res.Moved, utils.FormatSize(res.Bytes))
			fmt.Println("[DRY RUN] Nothing was removed.")
			return err
		}

		if !jsonFlag {
			printYoloWarning()
		}

		if !shouldSkipConfirm(wipeYes) {
			if wipePermanent {
				if !confirmDangerous(fmt.Sprintf("Permanently delete %d node_modules (%s)?", count, utils.FormatSize(modules))) {
					fmt.Println("Cancelled.")
					return nil
				}
			} else {
				if !confirmAction(fmt.Sprintf("\nMove %d node_modules (%s) to Trash?", count, utils.FormatSize(modules))) {
					fmt.Println("Cancelled.")
					return nil
				}
			}
		}

		res, err := e.Reclaim(ctx, x)
		if jsonFlag {
			if jerr := printJSON(buildWipeJSON(root, res, false, err)); jerr != nil {
				return jerr
			}
			return err
		}

		fmt.Printf("\nWiped %d node_modules (%s reclaimed)", res.Moved, utils.FormatSize(res.Bytes))
		if res.Failed > 0 {
			fmt.Printf(", %d failed", res.Failed)
		}
		fmt.Println()
		if left := e.ModulesSize(); left > 0 {
			fmt.Printf("%s of node_modules remain under %s.\n", utils.FormatSize(left), root)
		}
		return err
	},
}

func countModules(finds []scanner.Find) int {
	n := 0
	for _, f := range finds {
		if f.ModuleSize > 0 {
			n++
		}
	}
	return n
}

func init() {
	wipeCmd.Flags().BoolVar(&wipePermanent, "permanent", false, "Permanently delete instead of moving to Trash")
	wipeCmd.Flags().BoolVarP(&wipeYes, "yes", "y", false, "Skip confirmation prompt")
	wipeCmd.Flags().BoolVar(&wipeDryRun, "dry-run", false, "Show what would be removed without removing anything")
}
