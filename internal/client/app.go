// Package client is the DocuMind terminal user interface. It keeps a
// session.State, feeds every keystroke-level intent through session.Reduce
// and runs the resulting effects as bubbletea commands.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/fenggwsx/DocuMind/internal/config"
	"github.com/fenggwsx/DocuMind/internal/session"
)

type logLevel int

const (
	logLevelInfo logLevel = iota
	logLevelError
)

type logEntry struct {
	label string
	body  string
	level logLevel
}

// App is the bubbletea model of the client.
type App struct {
	cfg    config.ClientConfig
	runner session.Runner
	state  session.State
	now    func() time.Time
	newID  func() string

	viewport viewport.Model
	input    textinput.Model
	helper   help.Model
	commands []commandSpec
	styles   styleSet

	width      int
	height     int
	showHelp   bool
	helpView   string
	helpHeight int
	helpPage   bool

	logLine logEntry
}

// eventMsg delivers the outcome of an effect back to the update loop.
type eventMsg struct {
	event session.Event
}

// NewApp builds a logged-out client. runner performs the backend calls and
// catalog seeds the community screens.
func NewApp(cfg config.ClientConfig, runner session.Runner, catalog session.Catalog) *App {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = fmt.Sprintf("Type %shelp for commands", string(cfg.CommandPrefix))
	input.Focus()

	a := &App{
		cfg:      cfg,
		runner:   runner,
		state:    session.NewState(catalog),
		now:      time.Now,
		newID:    uuid.NewString,
		viewport: viewport.New(80, 20),
		input:    input,
		helper:   help.New(),
		commands: defaultCommands(cfg.CommandPrefix),
		styles:   buildStyles(session.ThemeDark),
	}
	a.logf("Welcome to DocuMind. Use %slogin or %sregister to begin.", string(cfg.CommandPrefix), string(cfg.CommandPrefix))
	a.updateViewportContent()
	return a
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateInputWidth()
		a.updateHelp()
		a.updateViewportSize()
		a.updateViewportContent()
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case eventMsg:
		prev := a.state
		cmd := a.dispatch(msg.event)
		a.reportResult(prev, msg.event, cmd != nil)
		return a, cmd
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEnter:
		value := strings.TrimSpace(a.input.Value())
		a.input.Reset()
		a.refreshHelp()
		if value == "" {
			return a, nil
		}
		return a, a.handleSubmit(value)
	case tea.KeyTab:
		a.handleTabCompletion()
		a.refreshHelp()
		return a, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	case tea.KeyEsc:
		if a.state.LastError != "" {
			cmd := a.dispatch(session.ErrorDismissed{})
			a.logf("Ready")
			return a, cmd
		}
		if a.helpPage {
			a.helpPage = false
			a.updateViewportContent()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.refreshHelp()
	return a, cmd
}

func (a *App) refreshHelp() {
	a.updateHelp()
	a.updateViewportSize()
}

// dispatch reduces ev into the current state and turns each effect into a
// command that reports back through eventMsg.
func (a *App) dispatch(ev session.Event) tea.Cmd {
	prevErr := a.state.LastError
	next, effects := session.Reduce(a.state, ev)
	a.state = next
	if next.LastError != "" && next.LastError != prevErr {
		a.logErrorf("%s", next.LastError)
	}
	a.styles = buildStyles(a.theme())
	a.updateViewportContent()

	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		cmds = append(cmds, a.runEffect(a.runner.Prepare(eff)))
	}
	return tea.Batch(cmds...)
}

func (a *App) runEffect(eff session.Effect) tea.Cmd {
	runner := a.runner
	return func() tea.Msg {
		ev := runner.Run(context.Background(), eff)
		if ev == nil {
			return nil
		}
		return eventMsg{event: ev}
	}
}

// reportResult writes a status line for results the reducer accepted.
func (a *App) reportResult(prev session.State, ev session.Event, followUp bool) {
	switch e := ev.(type) {
	case session.AuthSucceeded:
		if !prev.Authenticated() && a.state.User != nil {
			a.logf("Signed in as %s", a.state.User.Name)
		}
	case session.DocumentLoaded:
		if doc := a.state.ActiveDocument; doc != nil && prev.ActiveDocument == nil && doc.ID == e.DocID {
			a.logf("Opened %s (%d paragraphs)", doc.Title, len(doc.Content))
		}
	case session.AnswerReceived:
		if prev.IsSending && !a.state.IsSending {
			a.logf("Answer received")
		}
	case session.UploadSucceeded:
		if followUp {
			a.logf("Upload stored, refreshing library ...")
		}
	case session.LibraryLoaded:
		if prev.IsLoading && !a.state.IsLoading && a.state.View == session.ViewLibrary {
			a.logf("Library has %d documents", len(a.state.Documents))
		}
	}
}

func (a *App) theme() session.Theme {
	if a.state.User != nil {
		return a.state.User.Theme
	}
	return session.ThemeDark
}

func (a *App) logf(format string, args ...interface{}) {
	a.logLine = logEntry{label: "INFO", body: fmt.Sprintf(format, args...), level: logLevelInfo}
}

func (a *App) logErrorf(format string, args ...interface{}) {
	a.logLine = logEntry{label: "ERROR", body: fmt.Sprintf(format, args...), level: logLevelError}
}
