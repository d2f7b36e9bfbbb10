package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/wiper/internal/engine"
	"github.com/lu-zhengda/wiper/internal/history"
	"github.com/lu-zhengda/wiper/internal/reclaim"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/store"
	"github.com/lu-zhengda/wiper/internal/utils"
)

type viewState int

const (
	viewRoots viewState = iota
	viewProjects
	viewConfirm
	viewResult
)

// RootStore persists the watch roots shown in the root list.
type RootStore interface {
	AddRoot(ctx context.Context, path string) error
	RemoveRoot(ctx context.Context, path string) (bool, error)
	Roots(ctx context.Context) ([]store.WatchRoot, error)
}

// Options wires the TUI to its backends.
type Options struct {
	Roots     RootStore
	Ledger    history.Ledger
	NewEngine func(root string) *engine.Engine
	Reclaimer engine.Reclaimer
}

type rootsLoadedMsg struct {
	roots []store.WatchRoot
	total int64
	err   error
}

type scanDoneMsg struct {
	root string
	err  error
}

type reclaimDoneMsg struct {
	root string
	res  reclaim.Result
	err  error
}

type Model struct {
	opts        Options
	currentView viewState

	// Root list state
	roots      []store.WatchRoot
	rootCursor int
	totalWiped int64
	adding     bool
	input      textinput.Model

	// Project list state; engines are kept per root so revisiting a
	// root shows its last scan immediately.
	engines      map[string]*engine.Engine
	loading      map[string]bool
	engine       *engine.Engine
	cursor       int
	scrollOffset int
	showChart    bool

	wiping     bool
	lastResult reclaim.Result
	lastErr    error

	status  string
	spinner spinner.Model

	width  int
	height int
}

func New(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	ti := textinput.New()
	ti.Placeholder = "~/code"
	ti.CharLimit = 4096
	ti.Width = 50

	return Model{
		opts:    opts,
		engines: make(map[string]*engine.Engine),
		loading: make(map[string]bool),
		input:   ti,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadRoots(), m.spinner.Tick)
}

func (m Model) loadRoots() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		roots, err := m.opts.Roots.Roots(ctx)
		if err != nil {
			return rootsLoadedMsg{err: err}
		}
		total, err := history.TotalReclaimed(ctx, m.opts.Ledger)
		return rootsLoadedMsg{roots: roots, total: total, err: err}
	}
}

func (m Model) doScan(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		err := e.Load(context.Background())
		return scanDoneMsg{root: e.Root(), err: err}
	}
}

func (m Model) doReclaim(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		res, err := e.Reclaim(context.Background(), m.opts.Reclaimer)
		return reclaimDoneMsg{root: e.Root(), res: res, err: err}
	}
}

// scan marks e as loading and returns the command that scans it.
func (m Model) scan(e *engine.Engine) tea.Cmd {
	m.loading[e.Root()] = true
	return tea.Batch(m.doScan(e), m.spinner.Tick)
}

// scanning reports whether the current root has a scan in flight.
func (m Model) scanning() bool {
	if m.engine == nil {
		return false
	}
	return m.loading[m.engine.Root()] || m.engine.Status() == engine.Scanning
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case rootsLoadedMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		}
		m.roots = msg.roots
		m.totalWiped = msg.total
		if m.rootCursor >= len(m.roots) {
			m.rootCursor = max(len(m.roots)-1, 0)
		}
		return m, nil

	case scanDoneMsg:
		if !errors.Is(msg.err, engine.ErrSuperseded) {
			delete(m.loading, msg.root)
		}
		if msg.err != nil && !errors.Is(msg.err, engine.ErrSuperseded) && !errors.Is(msg.err, context.Canceled) {
			m.status = "Scan failed: " + msg.err.Error()
		}
		if m.engine != nil && m.engine.Root() == msg.root {
			m.clampCursor()
		}
		return m, nil

	case reclaimDoneMsg:
		m.wiping = false
		m.lastResult = msg.res
		m.lastErr = msg.err
		m.currentView = viewResult
		m.clampCursor()
		return m, m.loadRoots()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.adding {
			return m.updateAdding(msg)
		}
		if msg.String() == "q" && !m.wiping {
			return m, tea.Quit
		}

		switch m.currentView {
		case viewRoots:
			return m.updateRoots(msg)
		case viewProjects:
			return m.updateProjects(msg)
		case viewConfirm:
			return m.updateConfirm(msg)
		case viewResult:
			return m.updateResult(msg)
		}

	default:
		// Forward cursor blink and other messages to the text input when active.
		if m.adding {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.adding = false
		m.input.Blur()
		raw := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if raw == "" {
			return m, nil
		}
		path, err := utils.ExpandPath(raw)
		if err != nil || !utils.DirExists(path) {
			m.status = fmt.Sprintf("Not a directory: %s", raw)
			return m, nil
		}
		if err := m.opts.Roots.AddRoot(context.Background(), path); err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.status = "Added " + path
		return m, m.loadRoots()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateRoots(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.rootCursor > 0 {
			m.rootCursor--
		}
	case "down", "j":
		if m.rootCursor < len(m.roots)-1 {
			m.rootCursor++
		}
	case "a":
		m.adding = true
		m.status = ""
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink
	case "x":
		if m.rootCursor < len(m.roots) {
			path := m.roots[m.rootCursor].Path
			if _, err := m.opts.Roots.RemoveRoot(context.Background(), path); err != nil {
				m.status = "Error: " + err.Error()
				return m, nil
			}
			if e, ok := m.engines[path]; ok {
				e.Cancel()
				delete(m.engines, path)
				delete(m.loading, path)
			}
			m.status = "Removed " + path
			return m, m.loadRoots()
		}
	case "enter":
		if m.rootCursor < len(m.roots) {
			return m.openRoot(m.roots[m.rootCursor].Path)
		}
	}
	return m, nil
}

// openRoot switches to the project list for root, scanning it the first
// time it is opened.
func (m Model) openRoot(root string) (tea.Model, tea.Cmd) {
	m.currentView = viewProjects
	m.cursor = 0
	m.scrollOffset = 0
	m.status = ""

	e, ok := m.engines[root]
	if !ok {
		e = m.opts.NewEngine(root)
		m.engines[root] = e
	}
	m.engine = e
	if e.Status() == engine.Idle && !m.loading[root] {
		return m, m.scan(e)
	}
	return m, nil
}

func (m Model) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	finds := m.engine.Finds()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}
	case "down", "j":
		if m.cursor < len(finds)-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
	case "r":
		m.status = ""
		return m, m.scan(m.engine)
	case "t":
		m.showChart = !m.showChart
	case "w":
		if m.scanning() {
			return m, nil
		}
		if scanner.ModulesSize(finds) == 0 {
			m.status = "All clear. Nothing to wipe."
			return m, nil
		}
		m.currentView = viewConfirm
	case "esc", "backspace":
		m.currentView = viewRoots
		m.status = ""
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.wiping {
		return m, nil
	}
	switch msg.String() {
	case "y":
		m.wiping = true
		return m, tea.Batch(m.doReclaim(m.engine), m.spinner.Tick)
	case "n", "esc", "backspace":
		m.currentView = viewProjects
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "enter":
		m.currentView = viewProjects
	case "r":
		m.currentView = viewProjects
		return m, m.scan(m.engine)
	}
	return m, nil
}

func (m *Model) clampCursor() {
	if m.engine == nil {
		return
	}
	n := len(m.engine.Finds())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	visible := m.visibleItemCount()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

func (m Model) visibleItemCount() int {
	// Reserve lines for: header(2) + summary bar(3) + status(2) + help(2) + padding(1) = 10
	available := m.height - 10
	if m.showChart {
		available -= m.chartHeight()
	}
	if available < 5 {
		available = 5
	}
	return available
}

func (m Model) chartHeight() int {
	h := m.height / 3
	if h < 6 {
		h = 6
	}
	return h
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

// --- Views ---

func (m Model) View() string {
	switch m.currentView {
	case viewProjects:
		return m.viewProjects()
	case viewConfirm:
		return m.viewConfirm()
	case viewResult:
		return m.viewResult()
	default:
		return m.viewRoots()
	}
}

func (m Model) viewRoots() string {
	s := renderHeader("Watch roots") + "\n"

	if len(m.roots) == 0 {
		s += dimStyle.Render("  No watch roots yet. Press a to add a directory to monitor.") + "\n"
	}
	for i, r := range m.roots {
		line := fmt.Sprintf("%-20s %-50s %s", truncPath(utils.CleanName(r.Path), 20), truncPath(r.Path, 50), dimStyle.Render("added "+utils.TimeAgo(r.AddedAt)))
		if e, ok := m.engines[r.Path]; ok && e.Status() == engine.Complete {
			line += "  " + utils.FormatSize(e.ModulesSize())
		}
		if i == m.rootCursor {
			s += selectedStyle.Render("> "+line) + "\n"
		} else {
			s += "  " + line + "\n"
		}
	}

	if m.adding {
		s += "\n  Add directory: " + m.input.View() + "\n"
	}
	if m.status != "" {
		s += "\n  " + m.status + "\n"
	}

	s += "\n" + statusBarStyle.Render(fmt.Sprintf(" Total wiped: %s ", utils.FormatSize(m.totalWiped)))
	if m.adding {
		return s + renderFooter("\nenter add | esc cancel")
	}
	return s + renderFooter("\nj/k navigate | enter open | a add | x remove | q quit")
}

func (m Model) viewProjects() string {
	root := m.engine.Root()
	s := renderHeader(utils.ShortenName(root)) + "\n"

	if m.scanning() {
		s += m.spinner.View() + " Scanning " + root + "...\n"
		return s + renderFooter("\nesc back | q quit")
	}

	finds := m.engine.Finds()
	width := m.contentWidth()

	s += renderSummaryBar(m.engine.Summaries(), max(width-4, 10)) + "\n"

	if modules := m.engine.ModulesSize(); modules > 0 {
		s += warnStyle.Render(fmt.Sprintf("%s of node_modules found", utils.FormatSize(modules))) + "\n\n"
	} else {
		s += successStyle.Render("All clear") + "\n\n"
	}

	if m.showChart {
		selected := ""
		if m.cursor < len(finds) {
			selected = finds[m.cursor].Path
		}
		s += renderTreemap(root, finds, max(width-2, 4), m.chartHeight(), selected) + "\n"
	}

	visible := m.visibleItemCount()
	total := len(finds)
	end := min(m.scrollOffset+visible, total)

	nameWidth := max(width-50, 20)
	for i := m.scrollOffset; i < end; i++ {
		f := finds[i]
		ratio := 0.0
		if f.ProjectSize > 0 {
			ratio = float64(f.ModuleSize) / float64(f.ProjectSize)
		}
		line := fmt.Sprintf("%-*s %-16s %s %10s / %-10s",
			nameWidth, truncPath(utils.RelPath(root, f.Path), nameWidth),
			utils.TimeAgo(f.LastModified),
			renderProgressBar(ratio, 8),
			utils.FormatSize(f.ModuleSize), utils.FormatSize(f.ProjectSize))
		if i == m.cursor {
			s += selectedStyle.Render("> ") + line + "\n"
		} else {
			s += "  " + line + "\n"
		}
	}

	if total > visible {
		s += dimStyle.Render(fmt.Sprintf("  [%d-%d of %d]", m.scrollOffset+1, end, total)) + "\n"
	}

	if m.status != "" {
		s += "\n  " + m.status + "\n"
	}
	if scanned := m.engine.ScannedAt(); !scanned.IsZero() {
		s += dimStyle.Render("  Scanned "+utils.TimeAgo(scanned)) + "\n"
	}

	return s + renderFooter("\nj/k navigate | w wipe | r refresh | t chart | esc back | q quit")
}

func (m Model) viewConfirm() string {
	root := m.engine.Root()
	s := dangerStyle.Render(" CONFIRM WIPE ") + "\n\n"

	if m.wiping {
		return s + m.spinner.View() + " Moving node_modules to Trash...\n"
	}

	var count int
	var size int64
	for _, f := range m.engine.Finds() {
		if f.ModuleSize <= 0 {
			continue
		}
		count++
		size += f.ModuleSize
		s += fmt.Sprintf("  %s (%s)\n", truncPath(utils.RelPath(root, f.Path)+"/node_modules", 50), utils.FormatSize(f.ModuleSize))
	}

	s += fmt.Sprintf("\n  %d node_modules | %s | will be moved to Trash (recoverable)\n", count, utils.FormatSize(size))
	return s + helpStyle.Render("\n  y confirm | n cancel")
}

func (m Model) viewResult() string {
	s := renderHeader(utils.ShortenName(m.engine.Root()), "Wiped") + "\n"

	r := m.lastResult
	s += successStyle.Render(fmt.Sprintf("  Wiped: %d node_modules (%s reclaimed)", r.Moved, utils.FormatSize(r.Bytes))) + "\n"
	if r.Failed > 0 {
		s += failStyle.Render(fmt.Sprintf("  Failed:  %d node_modules", r.Failed)) + "\n"
	}
	if m.lastErr != nil {
		s += failStyle.Render("  Error: "+m.lastErr.Error()) + "\n"
	}
	s += "\n" + statusBarStyle.Render(fmt.Sprintf(" Total wiped: %s ", utils.FormatSize(m.totalWiped)))

	return s + helpStyle.Render("\n\n  enter back | r re-scan | q quit")
}
