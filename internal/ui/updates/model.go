// Package updates renders the interactive progress of an update run.
package updates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/esoctl/internal/download"
	"github.com/bnema/esoctl/internal/reconcile"
	uiprogress "github.com/bnema/esoctl/internal/ui/progress"
	"github.com/bnema/esoctl/internal/ui/styles"
)

// Model processes planned items one at a time through a Downloader
type Model struct {
	ctx         context.Context
	cancel      context.CancelFunc
	spinner     spinner.Model
	progressBar progress.Model
	downloader  *download.Downloader

	plan    reconcile.Plan
	paths   []string
	steps   []uiprogress.Step
	current int

	subProgress float64
	subDetail   string

	results   []download.ItemResult
	done      bool
	cancelled bool
}

// New creates a model for the given plan. Cancelling ctx, or pressing
// ctrl+c, fails the items not yet processed.
func New(ctx context.Context, d *download.Downloader, plan reconcile.Plan) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	paths := plan.Paths()
	steps := make([]uiprogress.Step, len(paths))
	for i, path := range paths {
		steps[i] = uiprogress.Step{Name: stepName(path, plan[path]), State: uiprogress.StatePending}
	}

	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:         ctx,
		cancel:      cancel,
		spinner:     s,
		progressBar: p,
		downloader:  d,
		plan:        plan,
		paths:       paths,
		steps:       steps,
	}
}

func stepName(path string, item reconcile.PlanItem) string {
	name := item.Entry.Title
	if name == "" {
		name = path
	}
	if v := reconcile.RemoteVersion(item.Entry); v != "" {
		name += " " + v
	}
	return name
}

// Messages
type (
	startMsg    struct{}
	itemDoneMsg struct{ result download.ItemResult }
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		func() tea.Msg { return startMsg{} },
	)
}

func (m Model) processNext() tea.Cmd {
	path := m.paths[m.current]
	item := m.plan[path]
	ctx := m.ctx
	d := m.downloader
	return func() tea.Msg {
		if err := ctx.Err(); err != nil {
			return itemDoneMsg{result: download.ItemResult{
				Path: path, Entry: item.Entry, Status: download.StatusFailed, Err: err,
			}}
		}
		return itemDoneMsg{result: d.Process(ctx, path, item)}
	}
}

func quitSoon(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tea.Quit()
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			// The running item sees the cancelled context and the
			// remaining ones are failed as they come up.
			m.cancelled = true
			m.cancel()
		}

	case tea.WindowSizeMsg:
		m.progressBar.Width = min(msg.Width-10, 40)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd

	case uiprogress.SubProgressMsg:
		m.subProgress = msg.Percent
		m.subDetail = msg.Detail
		return m, m.progressBar.SetPercent(msg.Percent / 100)

	case startMsg:
		if len(m.paths) == 0 {
			m.done = true
			return m, quitSoon(300 * time.Millisecond)
		}
		m.steps[0].State = uiprogress.StateInProgress
		return m, m.processNext()

	case itemDoneMsg:
		m.results = append(m.results, msg.result)
		step := &m.steps[m.current]
		switch msg.result.Status {
		case download.StatusFailed:
			step.State = uiprogress.StateError
			step.Error = msg.result.Err
		case download.StatusAlreadyDownloaded:
			step.State = uiprogress.StateSkipped
			step.Detail = "already downloaded"
		default:
			step.State = uiprogress.StateComplete
		}
		m.subProgress = 0
		m.subDetail = ""

		m.current++
		if m.current < len(m.paths) {
			m.steps[m.current].State = uiprogress.StateInProgress
			return m, tea.Batch(m.progressBar.SetPercent(0), m.processNext())
		}

		m.done = true
		m.cancel()
		return m, quitSoon(300 * time.Millisecond)
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Text).
		Bold(true)
	b.WriteString(titleStyle.Render(fmt.Sprintf("Downloading %d update(s)", len(m.paths))))
	b.WriteString("\n\n")

	if len(m.paths) == 0 {
		b.WriteString(uiprogress.FormatSuccess("Everything is up to date"))
		b.WriteString("\n")
		return b.String()
	}

	indent := "  "
	detailStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	for _, step := range m.steps {
		icon := uiprogress.StyledIcon(step.State)
		if step.State == uiprogress.StateInProgress {
			icon = m.spinner.View()
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", indent, icon, uiprogress.StepStyle(step.State).Render(step.Name)))

		switch {
		case step.State == uiprogress.StateInProgress && m.subProgress > 0:
			if m.subDetail != "" {
				b.WriteString(indent + "    " + detailStyle.Render(m.subDetail) + "\n")
			}
			b.WriteString(indent + "  " + m.progressBar.View() + "\n")
		case step.State == uiprogress.StateError && step.Error != nil:
			b.WriteString(indent + "    " + styles.ErrorText.Render(step.Error.Error()) + "\n")
		case step.Detail != "":
			b.WriteString(indent + "    " + detailStyle.Render(step.Detail) + "\n")
		}
	}

	if m.done {
		r := m.Result()
		b.WriteString("\n")
		summary := fmt.Sprintf("Downloaded: %d, Already cached: %d, Failed: %d",
			r.Count(download.StatusDownloaded), r.Count(download.StatusAlreadyDownloaded), r.Count(download.StatusFailed))
		b.WriteString(detailStyle.Render(indent + summary))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the outcome of every planned item. Items the program never
// reached, because it was interrupted, are reported as failed.
func (m Model) Result() *download.RunResult {
	res := &download.RunResult{Items: append([]download.ItemResult(nil), m.results...)}
	for _, path := range m.paths[len(m.results):] {
		err := m.ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		res.Items = append(res.Items, download.ItemResult{
			Path:   path,
			Entry:  m.plan[path].Entry,
			Status: download.StatusFailed,
			Err:    err,
		})
	}
	return res
}

// Cancelled reports whether the user interrupted the run
func (m Model) Cancelled() bool {
	return m.cancelled
}
