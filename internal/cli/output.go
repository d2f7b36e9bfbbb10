package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/utils"
)

// printScanResults prints one root's Finds in walk order followed by the
// module and project totals.
func printScanResults(root string, finds []scanner.Find) {
	fmt.Printf("\n%s\n", root)
	fmt.Println(strings.Repeat("-", 78))

	if len(finds) == 0 {
		fmt.Println("  No projects found.")
		return
	}

	for _, f := range finds {
		fmt.Printf("  %-38s %-16s %10s / %-10s\n",
			truncatePath(utils.RelPath(root, f.Path), 38),
			utils.TimeAgo(f.LastModified),
			utils.FormatSize(f.ModuleSize),
			utils.FormatSize(f.ProjectSize))
	}

	modules := scanner.ModulesSize(finds)
	fmt.Println()
	if modules == 0 {
		fmt.Printf("All clear: %d projects, no node_modules.\n", len(finds))
		return
	}
	fmt.Printf("%s of node_modules found in %d projects (%s total).\n",
		utils.FormatSize(modules), len(finds), utils.FormatSize(scanner.ProjectsSize(finds)))
}

var (
	diffGrewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	diffShrankStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	diffSameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// diffIndicator renders a change in node_modules bytes. Growth is red
// since it is more to reclaim.
func diffIndicator(delta int64) string {
	switch {
	case delta > 0:
		return diffGrewStyle.Render("+" + utils.FormatSize(delta))
	case delta < 0:
		return diffShrankStyle.Render("-" + utils.FormatSize(-delta))
	default:
		return diffSameStyle.Render("no change")
	}
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

var stdin = bufio.NewReader(os.Stdin)

func readAnswer() string {
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func confirmAction(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	return strings.ToLower(readAnswer()) == "y"
}

// confirmDangerous requires the word "yes" rather than a single key.
func confirmDangerous(prompt string) bool {
	fmt.Printf("%s\nThis cannot be undone. Type 'yes' to continue: ", prompt)
	return strings.ToLower(readAnswer()) == "yes"
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
