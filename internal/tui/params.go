// internal/tui/params.go
// Package tui collects missing benchmark parameters interactively.
package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mwiater/ollamabench/internal/util"
)

// Params holds the values the benchmark needs before it can start.
type Params struct {
	Model        string
	SerialRuns   int
	ParallelRuns int
}

// viewState represents the current step of the parameter form.
type viewState int

const (
	// viewModelSelector is the state where the user selects a model.
	viewModelSelector viewState = iota
	// viewSerialCount is the state where the user enters the serial run count.
	viewSerialCount
	// viewParallelCount is the state where the user enters the parallel run count.
	viewParallelCount
	// viewDone is the final state after all values are collected.
	viewDone
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// item represents a selectable model in the Bubble Tea list.
type item struct {
	title string
}

// Title returns the title of the list item.
func (i item) Title() string { return i.title }

// Description returns the description of the list item.
func (i item) Description() string { return "Select this model" }

// FilterValue returns the title of the item, used for filtering.
func (i item) FilterValue() string { return i.title }

// model is the Bubble Tea model for the parameter form.
type model struct {
	state     viewState
	modelList list.Model
	countIn   textinput.Model
	params    Params
	defaults  Params
	inputErr  string
	aborted   bool
}

// initialModel builds the form, seeding the list with the available models.
func initialModel(models []string, defaults Params) *model {
	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = item{title: m}
	}
	modelList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	modelList.Title = "Select a model to benchmark"

	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(defaults.SerialRuns)
	ti.CharLimit = 4
	ti.Focus()

	state := viewModelSelector
	if len(models) == 0 {
		state = viewSerialCount
	}

	return &model{
		state:     state,
		modelList: modelList,
		countIn:   ti,
		defaults:  defaults,
		params:    Params{Model: defaults.Model},
	}
}

// Init initializes the Bubble Tea model.
func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			return m.advance()
		}

	case tea.WindowSizeMsg:
		m.modelList.SetSize(util.Max(msg.Width-2, 20), util.Max(msg.Height-4, 5))
	}

	var cmd tea.Cmd
	switch m.state {
	case viewModelSelector:
		m.modelList, cmd = m.modelList.Update(msg)
	default:
		m.countIn, cmd = m.countIn.Update(msg)
	}
	return m, cmd
}

// advance moves the form to the next step, validating the current input.
func (m *model) advance() (tea.Model, tea.Cmd) {
	switch m.state {
	case viewModelSelector:
		if selected, ok := m.modelList.SelectedItem().(item); ok {
			m.params.Model = selected.title
		}
		m.state = viewSerialCount
		m.countIn.SetValue("")
		m.countIn.Placeholder = strconv.Itoa(m.defaults.SerialRuns)
		return m, nil
	case viewSerialCount:
		n, err := parseCount(m.countIn.Value(), m.defaults.SerialRuns)
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.params.SerialRuns = n
		m.inputErr = ""
		m.state = viewParallelCount
		m.countIn.SetValue("")
		m.countIn.Placeholder = strconv.Itoa(m.defaults.ParallelRuns)
		return m, nil
	case viewParallelCount:
		n, err := parseCount(m.countIn.Value(), m.defaults.ParallelRuns)
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.params.ParallelRuns = n
		m.inputErr = ""
		m.state = viewDone
		return m, tea.Quit
	}
	return m, nil
}

// View renders the current form step.
func (m *model) View() string {
	switch m.state {
	case viewModelSelector:
		return m.modelList.View()
	case viewSerialCount:
		return m.promptView("Serial runs")
	case viewParallelCount:
		return m.promptView("Parallel runs")
	}
	return ""
}

// promptView renders a count prompt with hint and validation error.
func (m *model) promptView(label string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(label) + "\n")
	b.WriteString(m.countIn.View() + "\n")
	b.WriteString(hintStyle.Render("enter to accept, blank for default") + "\n")
	if m.inputErr != "" {
		b.WriteString(errStyle.Render(m.inputErr) + "\n")
	}
	return b.String()
}

// parseCount interprets a run-count entry, applying the default for blank input.
func parseCount(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("run count cannot be negative")
	}
	return n, nil
}

// isTerminal is swapped in tests.
var isTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// CollectParams gathers any missing benchmark parameters from the user. On a
// terminal it runs the Bubble Tea form; otherwise it falls back to plain
// stdin prompts so piped invocations still work.
func CollectParams(models []string, defaults Params) (Params, error) {
	if !isTerminal() {
		return collectPlain(os.Stdin, os.Stdout, models, defaults)
	}

	form := initialModel(models, defaults)
	program := tea.NewProgram(form)
	if _, err := program.Run(); err != nil {
		return Params{}, fmt.Errorf("parameter form: %w", err)
	}
	if form.aborted {
		return Params{}, fmt.Errorf("parameter collection aborted")
	}
	return form.params, nil
}

// collectPlain reads parameters line by line from in, writing prompts to out.
func collectPlain(in io.Reader, out io.Writer, models []string, defaults Params) (Params, error) {
	reader := bufio.NewReader(in)
	params := Params{Model: defaults.Model}

	if len(models) > 0 {
		fmt.Fprintln(out, "Available models:")
		for i, m := range models {
			fmt.Fprintf(out, "  %d) %s\n", i+1, m)
		}
		fmt.Fprintf(out, "Model [%s]: ", defaults.Model)
		line, err := readLine(reader)
		if err != nil {
			return Params{}, err
		}
		if line != "" {
			if idx, err := strconv.Atoi(line); err == nil && idx >= 1 && idx <= len(models) {
				params.Model = models[idx-1]
			} else {
				params.Model = line
			}
		}
	}

	fmt.Fprintf(out, "Serial runs [%d]: ", defaults.SerialRuns)
	line, err := readLine(reader)
	if err != nil {
		return Params{}, err
	}
	if params.SerialRuns, err = parseCount(line, defaults.SerialRuns); err != nil {
		return Params{}, err
	}

	fmt.Fprintf(out, "Parallel runs [%d]: ", defaults.ParallelRuns)
	line, err = readLine(reader)
	if err != nil {
		return Params{}, err
	}
	if params.ParallelRuns, err = parseCount(line, defaults.ParallelRuns); err != nil {
		return Params{}, err
	}

	return params, nil
}

// readLine reads one trimmed line, treating EOF after input as a blank entry.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
