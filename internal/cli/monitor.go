package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/wiper/internal/engine"
	"github.com/lu-zhengda/wiper/internal/monitor"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/utils"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <path>",
	Short: "Rescan a path whenever projects under it change",
	Long:  "Scan a path, then watch it for created, removed or renamed files\nand directories. Each burst of changes triggers a full rescan.\nRuns until interrupted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveDir(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := newEngine(root)
		if err := e.Load(ctx); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		printMonitorReport(e)

		cfg := currentConfig()
		svc := monitor.New(root, e.Load, monitor.Options{
			Ignore:        cfg.Ignore,
			DependencyDir: classifier.DependencyDir(),
			Debounce:      cfg.DebounceDuration(),
			Logger:        logger,
			OnScan: func(err error) {
				switch {
				case err == nil:
					printMonitorReport(e)
				case errors.Is(err, engine.ErrSuperseded), errors.Is(err, context.Canceled):
				default:
					fmt.Fprintf(os.Stderr, "rescan failed: %v\n", err)
				}
			},
		})

		if !jsonFlag {
			fmt.Printf("Monitoring %s (Ctrl+C to stop)\n", root)
		}
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func printMonitorReport(e *engine.Engine) {
	finds := e.Finds()
	if jsonFlag {
		_ = printJSON(buildScanJSON([]string{e.Root()}, map[string][]scanner.Find{e.Root(): finds}, nil))
		return
	}
	fmt.Printf("  %s  %d projects, %s of node_modules\n",
		time.Now().Format("15:04:05"), len(finds), utils.FormatSize(scanner.ModulesSize(finds)))
}
