// Package tui provides a Bubble Tea terminal user interface for proxyprint.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/config"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	orderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StatePrinting
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *zap.Logger
	logs      []LogEntry
	orders    []string
	err       error

	// Print context
	ctx    context.Context
	cancel context.CancelFunc

	// Manager reference and its progress events
	manager *download.Manager
	events  chan download.ProgressEvent

	// Progress
	totalFiles      int32
	downloadedFiles int32
	totalPages      int32
	renderedPages   int32
	skipped         int

	// Options
	png          bool
	deleteImages bool
	verbose      bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings, log *zap.Logger) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "orders/deck.xml"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateInput,
		textInput:    ti,
		spinner:      sp,
		progress:     prog,
		settings:     settings,
		logger:       log,
		logs:         make([]LogEntry, 0),
		ctx:          ctx,
		cancel:       cancel,
		events:       make(chan download.ProgressEvent, 64),
		png:          strings.EqualFold(settings.OutputFormat, "png"),
		deleteImages: settings.DeleteImages,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.listenEvents())
}

// Message types
type (
	// ProgressMsg is sent when the manager reports progress.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when initialization completes.
	InitDoneMsg struct {
		Orders  []string
		Manager *download.Manager
		Err     error
	}

	// PrintDoneMsg is sent when all orders are printed.
	PrintDoneMsg struct {
		Files   int32
		TotalF  int32
		Pages   int32
		TotalP  int32
		Skipped int
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StatePrinting || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "tab":
			if m.state == StateInput {
				// Options are toggled while the path input is blurred
				if m.textInput.Focused() {
					m.textInput.Blur()
				} else {
					cmds = append(cmds, m.textInput.Focus())
				}
				return m, tea.Batch(cmds...)
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializePrint(), m.spinner.Tick)
			}

		case "p":
			if m.state == StateInput && !m.textInput.Focused() {
				m.png = !m.png
				return m, nil
			}

		case "x":
			if m.state == StateInput && !m.textInput.Focused() {
				m.deleteImages = !m.deleteImages
				return m, nil
			}

		case "v":
			if m.state == StateInput && !m.textInput.Focused() {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new order
				m.state = StateInput
				m.logs = nil
				m.orders = nil
				m.err = nil
				m.downloadedFiles = 0
				m.totalFiles = 0
				m.renderedPages = 0
				m.totalPages = 0
				m.skipped = 0
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.listenEvents())
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, tea.Batch(cmds...)
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case InitDoneMsg:
		if m.state != StateInitializing {
			// Cancelled while reading orders
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.orders = msg.Orders
			m.manager = msg.Manager
			m.state = StatePrinting
			cmds = append(cmds, m.startPrint(), m.tickProgress())
		}

	case PrintDoneMsg:
		m.downloadedFiles = msg.Files
		m.totalFiles = msg.TotalF
		m.renderedPages = msg.Pages
		m.totalPages = msg.TotalP
		m.skipped = msg.Skipped
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StatePrinting {
			m.downloadedFiles, m.totalFiles, m.renderedPages, m.totalPages = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// percent weighs fetched images and rendered pages equally.
func (m Model) percent() float64 {
	total := m.totalFiles + m.totalPages
	if total == 0 {
		return 0
	}
	return float64(m.downloadedFiles+m.renderedPages) / float64(total)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// listenEvents waits for the next manager event.
func (m Model) listenEvents() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🃏 Proxy Print"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Lay out card orders for home printing"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StatePrinting:
		b.WriteString(m.viewPrinting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter order file or directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options (tab):"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s PNG output instead of PDF (p)\n", checkbox(m.png)))
	b.WriteString(fmt.Sprintf("  %s Delete images afterwards (x)\n", checkbox(m.deleteImages)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output path: %s", m.settings.OutputPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading orders..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewPrinting() string {
	var b strings.Builder

	if len(m.orders) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d order(s):", len(m.orders))))
		b.WriteString("\n")
		for _, name := range m.orders {
			b.WriteString(orderStyle.Render(fmt.Sprintf("  ♠ %s", name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Images: %d/%d | Pages: %d/%d",
		m.downloadedFiles,
		m.totalFiles,
		m.renderedPages,
		m.totalPages,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Print Complete!\n\n"+
			"Orders: %d\n"+
			"Images: %d/%d\n"+
			"Pages: %d\n"+
			"Empty slots: %d\n"+
			"Output: %s",
		len(m.orders),
		m.downloadedFiles,
		m.totalFiles,
		m.renderedPages,
		m.skipped,
		m.settings.OutputPath,
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		if m.textInput.Focused() {
			return "enter: start • tab: options • esc: quit"
		}
		return "enter: start • tab: path • p: png • x: delete images • v: verbose • esc: quit"
	case StateInitializing, StatePrinting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new order • q: quit"
	}
	return ""
}

// options returns a copy of the settings with the toggles applied.
func (m Model) options() *config.Settings {
	settings := *m.settings
	settings.OutputFormat = "pdf"
	if m.png {
		settings.OutputFormat = "png"
	}
	settings.DeleteImages = m.deleteImages
	return &settings
}

// initializePrint reads the orders and creates the manager.
func (m *Model) initializePrint() tea.Cmd {
	input := strings.TrimSpace(m.textInput.Value())
	settings := m.options()
	ctx := m.ctx
	events := m.events
	log := m.logger

	return func() tea.Msg {
		manager := download.NewManager(settings, func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
				// UI is behind; the polled counters still move
			}
		}, download.WithLogger(log))

		if err := manager.Initialize(ctx, strings.Fields(input)); err != nil {
			return InitDoneMsg{Err: err}
		}
		if len(manager.GetOrderNames()) == 0 {
			return InitDoneMsg{Err: fmt.Errorf("no valid order in %s", input)}
		}

		return InitDoneMsg{
			Orders:  manager.GetOrderNames(),
			Manager: manager,
		}
	}
}

// startPrint runs the manager in background.
func (m *Model) startPrint() tea.Cmd {
	manager := m.manager
	ctx := m.ctx

	return func() tea.Msg {
		if manager == nil {
			return PrintDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := manager.StartDownloads(ctx)
		files, totalFiles, pages, totalPages := manager.GetProgress()

		skipped := 0
		for _, r := range manager.Reports() {
			skipped += r.Skipped
		}

		return PrintDoneMsg{
			Files:   files,
			TotalF:  totalFiles,
			Pages:   pages,
			TotalP:  totalPages,
			Skipped: skipped,
			Err:     err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, log *zap.Logger) error {
	p := tea.NewProgram(NewModel(settings, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
