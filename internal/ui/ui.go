package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	FormatView
	ExportView
	ResultView
)

// progressBuffer bounds how many updates can queue before the engine starts dropping them.
const progressBuffer = 50

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	session services.Session
	engine  tasks.ExportEngine
	opts    tasks.ExportOpts
	width   int
	height  int

	input      textarea.Model
	formatList list.Model
	spinner    spinner.Model
	bar        progress.Model
	help       help.Model
	keys       keyMap

	inputs       []string
	progressChan chan tasks.ProgressUpdate
	doneChan     chan exportOutcome
	cancel       context.CancelFunc
	progress     tasks.ProgressUpdate
	completed    int // Inputs known to be done, derived from update steps
	finished     []string
	report       *models.BatchReport
	err          error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// opts.Format preselects the format list; the rest of opts is passed through to every export.
func NewModel(ctx context.Context, session services.Session, engine tasks.ExportEngine, opts tasks.ExportOpts) *Model {
	input := textarea.New()
	input.Placeholder = "https://open.spotify.com/playlist/..."
	input.ShowLineNumbers = false
	input.SetWidth(72)
	input.SetHeight(8)
	input.Focus()

	formats := list.New(formatItems(), list.NewDefaultDelegate(), 60, 14)
	formats.Title = "Export format"
	formats.SetShowStatusBar(false)
	formats.SetFilteringEnabled(false)
	for i, f := range models.Formats() {
		if f == opts.Format {
			formats.Select(i)
		}
	}

	return &Model{
		ctx:        ctx,
		view:       InputView,
		session:    session,
		engine:     engine,
		opts:       opts,
		input:      input,
		formatList: formats,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the cursor blinking in the input view.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// ViewState returns the view currently shown.
func (m *Model) ViewState() ViewState { return m.view }

// Report returns the last completed batch report, if any.
func (m *Model) Report() *models.BatchReport { return m.report }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(msg.Width-4, 20))
		m.formatList.SetSize(max(msg.Width-4, 20), max(msg.Height-8, 8))
		m.help.Width = msg.Width
		m.bar.Width = min(max(msg.Width-4, 20), 72)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case FormatView:
			return m.handleFormatKeys(msg)
		case ExportView:
			return m.handleExportKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != ExportView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			m.progress = update
			done := update.Step - 1
			if update.Phase == tasks.ExportPlaylist || update.Phase == tasks.ParseInput {
				m.finished = append(m.finished, update.Message)
				done = update.Step
			}
			m.completed = max(m.completed, done)
			return m, m.waitForProgress()
		case MsgExportComplete:
			outcome := msg.data.(exportOutcome)
			m.report = outcome.report
			m.err = outcome.err
			if m.report != nil {
				m.completed = len(m.report.Entries)
			}
			m.view = ResultView
			m.progressChan = nil
			m.doneChan = nil
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			return m, nil
		}
	}

	return m.updateActive(msg)
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.abort):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.inputs = services.SplitIdentifiers(m.input.Value())
		if len(m.inputs) == 0 {
			m.err = fmt.Errorf("enter at least one playlist URL or ID")
			return m, nil
		}
		m.err = nil
		m.input.Blur()
		m.view = FormatView
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleFormatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = InputView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.formatList.SelectedItem().(formatItem); ok {
			m.opts.Format = item.format
			m.view = ExportView
			return m, tea.Batch(m.spinner.Tick, m.startExport())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.formatList, cmd = m.formatList.Update(msg)
	return m, cmd
}

func (m *Model) handleExportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.abort) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = InputView
		m.input.Reset()
		m.inputs = nil
		m.finished = nil
		m.progress = tasks.ProgressUpdate{}
		m.completed = 0
		m.report = nil
		m.err = nil
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case InputView:
		m.input, cmd = m.input.Update(msg)
	case FormatView:
		m.formatList, cmd = m.formatList.Update(msg)
	}
	return m, cmd
}

// startExport runs the batch in the background and returns the command that relays its progress.
func (m *Model) startExport() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.finished = nil
	m.completed = 0
	m.progressChan = make(chan tasks.ProgressUpdate, progressBuffer)
	m.doneChan = make(chan exportOutcome, 1)

	progress, done := m.progressChan, m.doneChan
	inputs, opts, session := m.inputs, m.opts, m.session

	go func() {
		report, err := m.engine.ExportMany(ctx, progress, session, inputs, opts)
		done <- exportOutcome{report: report, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	report, err := m.report, m.err
	return func() tea.Msg {
		if progress == nil {
			return exportCompleteMsg(report, err)
		}

		update, ok := <-progress
		if !ok {
			outcome := <-done
			return exportCompleteMsg(outcome.report, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case FormatView:
		return m.renderFormats()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderInput() string {
	title := styles.title.Render("Export Spotify playlists")
	prompt := "Paste playlist URLs or IDs, one per line."

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.abort})
	return fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s", title, prompt, m.input.View(), errLine, helpView)
}

func (m *Model) renderFormats() string {
	info := styles.help.Render(fmt.Sprintf("%d playlist(s) → %s", len(m.inputs), m.opts.OutputDir))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", m.formatList.View(), info, helpView)
}

func (m *Model) renderExport() string {
	title := styles.title.Render(fmt.Sprintf("Exporting %d playlist(s) as %s", len(m.inputs), m.opts.Format))

	var b strings.Builder
	for _, line := range m.finished {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	current := "Starting..."
	if m.progress.Message != "" {
		current = m.progress.Message
	}

	var ratio float64
	if len(m.inputs) > 0 {
		ratio = float64(min(m.completed, len(m.inputs))) / float64(len(m.inputs))
	}

	return fmt.Sprintf("%s\n%s\n%s\n\n%s %s", title, b.String(), m.bar.ViewAs(ratio), m.spinner.View(), current)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.report == nil {
		msg := "Export failed"
		if m.err != nil {
			msg = fmt.Sprintf("Export failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	succeeded, failed := len(m.report.Succeeded()), len(m.report.Failed())
	title := styles.ok.Render("✓ Export Complete!")
	if succeeded == 0 {
		title = styles.err.Render("✗ Nothing exported")
	} else if failed > 0 {
		title = styles.warn.Render(fmt.Sprintf("! %d of %d exported", succeeded, succeeded+failed))
	}

	lines := make([]string, 0, len(m.report.Entries))
	for _, e := range m.report.Entries {
		if e.OK() {
			lines = append(lines, styles.ok.Render(e.String()))
		} else {
			lines = append(lines, styles.err.Render(e.String()))
		}
	}
	body := styles.box.Render(strings.Join(lines, "\n\n"))

	var footer string
	if m.report.ManifestPath != "" {
		footer = "\n" + styles.help.Render("Manifest: "+m.report.ManifestPath)
	}
	if m.err != nil {
		footer += "\n" + styles.err.Render(m.err.Error())
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, body, footer, helpView)
}
