package chatcmder

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/papercomputeco/kotori/cmd/kotori/pipeline"
	"github.com/papercomputeco/kotori/pkg/cliui"
	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/dotdir"
)

// recentOnStart is how many session turns are replayed when chat opens.
const recentOnStart = 5

// turnMsg carries a finished dialogue turn back to the model.
type turnMsg struct {
	state dialogue.State
}

type chatModel struct {
	ctx       context.Context
	runner    Runner
	configDir string

	input   textinput.Model
	spinner spinner.Model
	busy    bool
	width   int
	intro   []string
	err     error

	// focus is the cursor blink started by the initial Focus.
	focus tea.Cmd
}

func newChatModel(ctx context.Context, runner Runner, configDir string, session *dotdir.Session) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Tell Kotori what's on your mind"
	ti.Prompt = cliui.PromptStyle.Render("you › ")
	ti.CharLimit = 2000
	focus := ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := chatModel{
		ctx:       ctx,
		runner:    runner,
		configDir: configDir,
		input:     ti,
		spinner:   sp,
		width:     80,
		focus:     focus,
	}

	recent := session.Recent(recentOnStart)
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		m.intro = append(m.intro, m.formatTurn(dialogue.State{
			Input:    e.Query,
			Response: e.Response,
			Agent:    dialogue.Agent(e.Agent),
		}))
	}
	return m
}

func runTUI(ctx context.Context, runner Runner, configDir string, session *dotdir.Session) error {
	m := newChatModel(ctx, runner, configDir, session)
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

func (m chatModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.focus}
	for _, turn := range m.intro {
		cmds = append(cmds, tea.Println(turn))
	}
	return tea.Sequence(cmds...)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.busy {
				return m, nil
			}
			return m.submit(m.input.Value())
		}

	case turnMsg:
		m.busy = false
		if err := pipeline.RecordHistory(m.configDir, msg.state); err != nil {
			m.err = err
		}
		printed := tea.Println(m.formatTurn(msg.state))
		focus := m.input.Focus()
		return m, tea.Sequence(printed, focus)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a turn for text. Exit words quit and blank input is ignored.
func (m chatModel) submit(text string) (tea.Model, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" {
		return m, nil
	}
	if isExit(text) {
		return m, tea.Quit
	}

	m.input.Reset()
	m.input.Blur()
	m.busy = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.turnCmd(text))
}

func (m chatModel) turnCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return turnMsg{state: m.runner.Run(m.ctx, dialogue.Request{Input: text})}
	}
}

func (m chatModel) formatTurn(state dialogue.State) string {
	response, err := cliui.RenderMarkdown(state.Response)
	if err != nil {
		response = cliui.Wrap(state.Response, m.width-4)
	}
	return fmt.Sprintf("\n%s %s\n\n%s %s",
		cliui.PromptStyle.Render("you ›"),
		state.Input,
		cliui.AgentBadge(string(state.Agent)),
		strings.TrimRight(response, "\n"),
	)
}

func (m chatModel) View() tea.View {
	var b strings.Builder
	if m.busy {
		fmt.Fprintf(&b, "%s %s", m.spinner.View(), cliui.DimStyle.Render("Kotori is thinking…"))
	} else {
		b.WriteString(m.input.View())
	}
	if m.err != nil {
		fmt.Fprintf(&b, "\n%s", cliui.WarnStyle.Render("could not save history: "+m.err.Error()))
	}
	fmt.Fprintf(&b, "\n%s", cliui.DimStyle.Render("enter send · esc quit"))
	return tea.NewView(b.String())
}
