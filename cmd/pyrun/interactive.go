package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/py"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#306998")).
			Padding(0, 1)

	attrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#306998"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err        error
	rt         pydust.Runtime
	mod        py.Module
	haveMod    bool
	wasmFile   string
	moduleName string
	cfg        config
	result     string
	attrs      []attrInfo
	argInput   textinput.Model
	selected   int
	state      modelState
}

type attrInfo struct {
	name     string
	typeName string
	callable bool
}

type modelState int

const (
	stateSelectAttr modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(wasmFile, moduleName string, cfg config) *interactiveModel {
	if moduleName == "" && wasmFile == "" {
		moduleName = demoModule
	}
	return &interactiveModel{
		wasmFile:   wasmFile,
		moduleName: moduleName,
		cfg:        cfg,
		state:      stateSelectAttr,
	}
}

type loadedMsg struct {
	err   error
	rt    pydust.Runtime
	mod   py.Module
	attrs []attrInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	if m.moduleName == "" {
		return loadedMsg{err: fmt.Errorf("interactive mode needs -module with -wasm")}
	}

	rt, err := openRuntime(ctx, m.wasmFile, m.cfg)
	if err != nil {
		return loadedMsg{err: err}
	}

	mod, err := py.Import(rt, m.moduleName)
	if err != nil {
		err = surfaced(rt, err)
		rt.Close() //nolint:errcheck
		return loadedMsg{err: err}
	}

	names, err := attrNames(rt, mod)
	if err != nil {
		err = surfaced(rt, err)
		mod.Decref()
		rt.Close() //nolint:errcheck
		return loadedMsg{err: err}
	}

	attrs := make([]attrInfo, 0, len(names))
	for _, name := range names {
		info := attrInfo{name: name}
		if attr, err := mod.Attr(name); err == nil {
			info.callable = py.Callable(attr)
			if typ, err := py.TypeOf(rt, attr); err == nil {
				if tn, err := typ.Name(); err == nil {
					info.typeName = tn
				}
				typ.Decref()
			}
		}
		attrs = append(attrs, info)
	}

	return loadedMsg{rt: rt, mod: mod, attrs: attrs}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break // let the input take the keystroke
			}
			m.teardown()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectAttr && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectAttr && m.selected < len(m.attrs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectAttr:
				if len(m.attrs) == 0 {
					break
				}
				if m.attrs[m.selected].callable {
					m.prepareInput()
					m.state = stateInputArgs
				} else {
					return m, m.callAttr
				}

			case stateInputArgs:
				return m, m.callAttr

			case stateShowResult:
				m.state = stateSelectAttr
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectAttr
			case stateShowResult:
				m.state = stateSelectAttr
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.mod = msg.mod
		m.haveMod = true
		m.attrs = msg.attrs

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.argInput, cmd = m.argInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) teardown() {
	if m.haveMod {
		m.mod.Decref()
		m.haveMod = false
	}
	if m.rt != nil {
		m.rt.Close() //nolint:errcheck
	}
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "arguments, comma-separated"
	ti.Prompt = "args: "
	ti.Width = 40
	ti.Focus()
	m.argInput = ti
}

func (m *interactiveModel) callAttr() tea.Msg {
	a := m.attrs[m.selected]

	attr, err := m.mod.Attr(a.name)
	if err != nil {
		return callResultMsg{err: surfaced(m.rt, err)}
	}

	var out string
	if a.callable {
		res, err := py.Call(m.rt, attr, parseArgs(m.argInput.Value())...)
		if err != nil {
			return callResultMsg{err: surfaced(m.rt, err)}
		}
		out, err = render(m.rt, res)
		res.Decref()
		if err != nil {
			return callResultMsg{err: surfaced(m.rt, err)}
		}
	} else {
		out, err = render(m.rt, attr)
		if err != nil {
			return callResultMsg{err: surfaced(m.rt, err)}
		}
	}
	return callResultMsg{result: out}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if !m.haveMod {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("pyrun"))
	b.WriteString(" ")
	b.WriteString(m.moduleName)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectAttr:
		b.WriteString("Select an attribute:\n\n")
		for i, a := range m.attrs {
			line := m.formatAttr(a)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter fetch/call • q quit"))

	case stateInputArgs:
		a := m.attrs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", attrStyle.Render(a.name)))
		b.WriteString(m.argInput.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		a := m.attrs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", attrStyle.Render(a.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatAttr(a attrInfo) string {
	name := attrStyle.Render(a.name)
	if a.callable {
		name += "()"
	}
	if a.typeName != "" {
		return name + "  " + typeStyle.Render(a.typeName)
	}
	return name
}

func runInteractive(wasmFile, moduleName string, cfg config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(wasmFile, moduleName, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
