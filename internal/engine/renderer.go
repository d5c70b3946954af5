package engine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgit-dev/mgit/internal/model"
)

const defaultRenderInterval = 100 * time.Millisecond

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	waitingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skippedStyle   = lipgloss.NewStyle().Faint(true)
	commandStyle   = lipgloss.NewStyle().Faint(true)
)

// RendererConfig is the configuration for the progress renderer.
type RendererConfig struct {
	Store    *StateStore
	Out      io.Writer
	TaskName string
	Interval time.Duration
}

func (c *RendererConfig) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}
	if c.Out == nil {
		return fmt.Errorf("out is required")
	}
	if c.Interval <= 0 {
		c.Interval = defaultRenderInterval
	}
	return nil
}

// Renderer is the purely observational side of a run: on every tick it
// snapshots the state store and repaints only the terminal rows that changed
// since the previous frame, repositioning the cursor instead of clearing the
// screen, so the table does not flicker. Its cadence affects perceived
// responsiveness only, never correctness.
type Renderer struct {
	store    *StateStore
	out      io.Writer
	taskName string
	interval time.Duration

	rows    []string
	started bool
}

// NewRenderer creates a new progress renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Renderer{
		store:    cfg.Store,
		out:      cfg.Out,
		taskName: cfg.TaskName,
		interval: cfg.Interval,
	}, nil
}

// Loop repaints on every tick until stop is closed, then paints one final
// frame so the last thing on screen is the fully terminal state.
func (r *Renderer) Loop(stop <-chan struct{}) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Render()
	for {
		select {
		case <-ticker.C:
			r.Render()
		case <-stop:
			r.Render()
			return nil
		}
	}
}

// Render paints one frame. The store lock is only held inside Snapshot;
// formatting and the terminal write happen on the copy.
func (r *Renderer) Render() {
	snap := r.store.Snapshot()
	r.paint(r.format(snap))
}

func (r *Renderer) format(snap []model.StepState) []string {
	lines := make([]string, 0, len(snap)+2)
	lines = append(lines, headerStyle.Render(fmt.Sprintf("Executing %q...", r.taskName)), "")

	for _, st := range snap {
		text, style := statusText(st)
		line := fmt.Sprintf("  %-24s %s %s",
			st.Repo,
			style.Render(fmt.Sprintf("%-14s", text)),
			commandStyle.Render("["+st.DisplayCommand+"]"),
		)
		lines = append(lines, line)
	}
	return lines
}

func statusText(st model.StepState) (string, lipgloss.Style) {
	switch st.Status {
	case model.StepStatusRunning:
		return "running...", runningStyle
	case model.StepStatusCompleted:
		return "completed.", completedStyle
	case model.StepStatusFailed:
		return "failed.", failedStyle
	case model.StepStatusSkipped:
		return "skipped.", skippedStyle
	default:
		return "waiting...", waitingStyle
	}
}

// paint rewrites only the rows that differ from the previous frame. The
// whole frame goes out in a single write.
func (r *Renderer) paint(lines []string) {
	var b strings.Builder

	if r.started {
		// Cursor back to the top of the block.
		b.WriteString(fmt.Sprintf("\x1b[%dA", len(r.rows)))
	}

	for i, line := range lines {
		if r.started && i < len(r.rows) && r.rows[i] == line {
			b.WriteString("\x1b[1B")
			continue
		}
		b.WriteString("\r\x1b[2K")
		b.WriteString(line)
		b.WriteString("\n")
	}

	r.rows = lines
	r.started = true
	fmt.Fprint(r.out, b.String())
}
