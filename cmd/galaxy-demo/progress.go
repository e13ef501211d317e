package main

import (
	"context"
	"fmt"
	"strings"

	galaxy "galaxy-sdk"
	"galaxy-sdk/models"
	"galaxy-sdk/workflow"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type stepMsg struct {
	step    workflow.Step
	message string
}

type pollMsg struct {
	datasetID string
	attempt   int
	state     models.DatasetState
}

type runDoneMsg struct {
	result *workflow.Result
	err    error
}

// teaReporter forwards run progress into a running bubbletea program
type teaReporter struct {
	program *tea.Program
}

func (r *teaReporter) Step(step workflow.Step, message string) {
	r.program.Send(stepMsg{step: step, message: message})
}

func (r *teaReporter) Poll(datasetID string, attempt int, state models.DatasetState) {
	r.program.Send(pollMsg{datasetID: datasetID, attempt: attempt, state: state})
}

// ProgressModel renders the run as a growing list of status lines with a
// spinner on the current one
type ProgressModel struct {
	baseURL        string
	spinner        spinner.Model
	statusMessages []string
	result         *workflow.Result
	err            error
	done           bool
	cancel         context.CancelFunc
}

func NewProgressModel(baseURL string, cancel context.CancelFunc) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ProgressModel{
		baseURL:        baseURL,
		spinner:        s,
		statusMessages: []string{},
		cancel:         cancel,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.statusMessages = append(m.statusMessages, msg.message)
		return m, nil

	case pollMsg:
		m.statusMessages = append(m.statusMessages,
			fmt.Sprintf("  %s is %s (poll %d)", msg.datasetID, msg.state, msg.attempt))
		return m, nil

	case runDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ProgressModel) View() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC")).
		MarginLeft(2)

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginLeft(4)

	var content strings.Builder
	content.WriteString(RenderHeader(m.baseURL) + "\n")

	for i, msg := range m.statusMessages {
		if i == len(m.statusMessages)-1 && !m.done {
			content.WriteString(style.Render(fmt.Sprintf("  %s %s", m.spinner.View(), msg)) + "\n")
		} else {
			content.WriteString(statusStyle.Render(fmt.Sprintf("  ✓ %s", msg)) + "\n")
		}
	}

	if m.err != nil {
		content.WriteString("\n" + errorStyle.MarginLeft(4).Render(fmt.Sprintf("❌ %v", m.err)) + "\n")
	} else if m.result != nil {
		content.WriteString("\n" + successStyle.MarginLeft(4).Render(
			fmt.Sprintf("✓ Wrote %d bytes to %s", m.result.Bytes, m.result.OutputFile)) + "\n")
	} else {
		content.WriteString("\n" + mutedStyle.MarginLeft(4).Render("q to cancel") + "\n")
	}

	return content.String()
}

// runInteractive runs the workflow while a bubbletea program renders it
func runInteractive(ctx context.Context, client *galaxy.GalaxyClient, opts workflow.Options) (*workflow.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewProgressModel(client.GetBaseURL(), cancel), tea.WithContext(ctx))

	go func() {
		res, err := workflow.NewRunner(client, opts, &teaReporter{program: program}).Run(runCtx)
		program.Send(runDoneMsg{result: res, err: err})
	}()

	final, err := program.Run()
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("could not run program: %w", err)
	}

	model, ok := final.(ProgressModel)
	if !ok || !model.done {
		return nil, context.Canceled
	}
	return model.result, model.err
}
