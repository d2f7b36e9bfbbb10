package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/wiper/internal/config"
	"github.com/lu-zhengda/wiper/internal/engine"
	"github.com/lu-zhengda/wiper/internal/history"
	"github.com/lu-zhengda/wiper/internal/logging"
	"github.com/lu-zhengda/wiper/internal/reclaim"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/store"
	"github.com/lu-zhengda/wiper/internal/trash"
	"github.com/lu-zhengda/wiper/internal/tui"
)

var (
	yoloMode   bool
	jsonFlag   bool
	configPath string
	appConfig  *config.Config

	logger    = slog.New(slog.DiscardHandler)
	logCloser io.Closer

	// Set via ldflags at build time.
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "wiper",
	Short:   "Find and reclaim node_modules under your project roots",
	Long:    "wiper scans watch roots for JavaScript projects, measures their node_modules,\nand moves the ones you pick to the Trash.\nLaunch without subcommands for interactive TUI mode.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Flags().Changed("version") {
			appConfig = config.Default()
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appConfig = cfg

		for _, w := range appConfig.Validate() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		// The TUI owns the terminal; log to the file only.
		var console io.Writer = os.Stderr
		if cmd == cmd.Root() {
			console = io.Discard
		}
		logger, logCloser = logging.New(appConfig.Logging, console)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ledger := openLedger(s)
		m := tui.New(tui.Options{
			Roots:     s,
			Ledger:    ledger,
			NewEngine: newEngine,
			Reclaimer: newExecutor(ledger, false, false),
		})
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	return err
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("wiper %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&yoloMode, "yolo", false, "Skip ALL confirmation prompts (dangerous!)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/wiper/config.yaml)")
	rootCmd.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	rootCmd.Flags().MarkHidden("generate-completion")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(configCmd)
}

// shouldSkipConfirm returns true if the user wants to skip confirmation,
// either via command-specific --yes or global --yolo.
func shouldSkipConfirm(cmdYes bool) bool {
	return cmdYes || yoloMode
}

// printYoloWarning prints a warning banner when --yolo mode is active.
func printYoloWarning() {
	if yoloMode {
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "  WARNING: --yolo mode is active. All confirmations will be skipped!")
		fmt.Fprintln(os.Stderr, "  node_modules will be removed without asking. Press Ctrl+C NOW to abort.")
		fmt.Fprintln(os.Stderr, "")
	}
}

func currentConfig() *config.Config {
	if appConfig == nil {
		appConfig = config.Default()
	}
	return appConfig
}

func openStore() (*store.Store, error) {
	path := currentConfig().Storage.Path
	if path == "" {
		path = store.DefaultPath()
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// openLedger returns the configured history backend. The sqlite backend
// shares s.
func openLedger(s *store.Store) history.Ledger {
	cfg := currentConfig()
	if cfg.History.Backend == "json" {
		path := cfg.History.Path
		if path == "" {
			path = history.DefaultPath()
		}
		return history.NewFile(path)
	}
	return s
}

// classifier recognizes projects for the walker and names the directory
// reclaim moves.
var classifier scanner.Classifier = scanner.NodeClassifier{}

func newWalker() *scanner.Walker {
	cfg := currentConfig()
	return scanner.NewWalker(classifier, scanner.Options{
		Ignore:      cfg.Ignore,
		Concurrency: cfg.ScanConcurrency(),
		Logger:      logger,
	})
}

func newEngine(root string) *engine.Engine {
	e := engine.New(root, newWalker(), logger)
	e.SetExcludeFunc(currentConfig().IsExcluded)
	return e
}

func newExecutor(ledger history.Ledger, permanent, dryRun bool) *reclaim.Executor {
	x := &reclaim.Executor{
		Trash:      trash.Default(),
		Ledger:     ledger,
		Classifier: classifier,
		Logger:     logger,
		DryRun:     dryRun,
	}
	if permanent {
		x.Trash = trash.Permanent{}
		x.Method = "permanent"
	}
	return x
}

// loadEngine scans root and returns the engine holding the result.
func loadEngine(ctx context.Context, root string) (*engine.Engine, error) {
	e := newEngine(root)
	if err := e.Load(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// RootCmd returns the root cobra command for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}
