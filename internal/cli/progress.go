package cli

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/voxrag/voxrag/internal/service"
)

const pollInterval = 200 * time.Millisecond

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers polling the job status
type tickMsg time.Time

// progressModel is the bubbletea model for indexing progress.
type progressModel struct {
	job      *service.Job
	snap     service.Job
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(job *service.Job) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		job:      job,
		snap:     job.Snapshot(),
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start polling).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.snap = m.job.Snapshot()

		switch m.snap.Status {
		case service.JobStatusCompleted:
			m.done = true
			return m, tea.Quit
		case service.JobStatusFailed:
			m.done = true
			m.err = fmt.Errorf("%s", m.snap.Error)
			return m, tea.Quit
		}

		return m, tickCmd()

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	var pct float64
	if m.snap.Total > 0 {
		pct = float64(m.snap.Progress) / float64(m.snap.Total)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.snap.Status))
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d files", m.snap.Progress, m.snap.Total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to hide the progress display")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nProgress display closed, indexing continues.\n")
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Indexing failed: %s\n", m.err))
	}

	if m.snap.Result != nil {
		r := m.snap.Result
		var output string
		output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
		output += fmt.Sprintf("  Files processed: %d\n", r.FilesProcessed)
		if r.FilesSkipped > 0 {
			output += fmt.Sprintf("  Files skipped:   %d\n", r.FilesSkipped)
		}
		output += fmt.Sprintf("  Chunks created:  %d\n", r.ChunksCreated)
		if r.ParentsCreated > 0 {
			output += fmt.Sprintf("  Parents created: %d\n", r.ParentsCreated)
		}
		if len(r.Errors) > 0 {
			output += m.theme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):\n", len(r.Errors)))
			for _, e := range r.Errors {
				output += fmt.Sprintf("  • %s\n", e)
			}
		}
		return output
	}

	return m.theme.completedStyle().Render("✓ Completed\n")
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runJobProgress runs the interactive progress UI for an in-process job.
// Returns nil on success or Ctrl+C (the job keeps running), the job's
// error on failure.
func runJobProgress(job *service.Job) error {
	model := newProgressModel(job)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
