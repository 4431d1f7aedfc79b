package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/ctoken/lang"
	"github.com/ardnew/ctoken/log"
	"github.com/ardnew/ctoken/pack"
	"github.com/ardnew/ctoken/registry"
	"github.com/ardnew/ctoken/token"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	defaultWidth   = 80
	previewWidth   = 40
	maxSuggestions = 3
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List tokens and their current values
  tick     Run one content pack tick and show what changed
  reload   Reload the state file
  edit     Edit the state file in $EDITOR and reload it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a template to evaluate it, e.g. {{Season}} or {{Hearts:{{Spouse}}}}
  Token names are completed after "{{" as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Config is what the REPL evaluates against.
type Config struct {
	// Registry resolves the tokens of evaluated templates.
	Registry *registry.Registry
	// Reload re-reads the state file into Registry. It may be nil.
	Reload func(context.Context) error
	// Tick runs one content pack update. It may be nil.
	Tick func(context.Context) (pack.Result, error)
	// StatePath is the state file opened by the edit command.
	StatePath string
	// CacheDir holds the history file.
	CacheDir string
	Logger   log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	cfg          Config
	input        textinput.Model
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
	mode         inputMode
	savedText    [2]string // input of each mode while the other is active
}

// Run starts the REPL.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Registry == nil {
		return ErrNoRegistry
	}

	historyPath := ""
	if cfg.CacheDir != "" {
		historyPath = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("history_entries", history.Len()),
		slog.Int("tokens", len(cfg.Registry.Names())))

	_, err = tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx)).Run()

	return err
}

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		cfg:        cfg,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		if msg.err != nil {
			return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
		}

		return m, m.reload()
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(m.input.Value()) == "":
		hint := "Type a template or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches()

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(-1), nil

	case tea.KeyDown:
		return m.recall(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches()

			return m, nil
		}

		return m.switchMode(1 - m.mode), nil
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches()

	return m, cmd
}

// cycle moves the selected candidate by step and completes the current
// word with it. A single candidate is completed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = -1
		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = (m.suggIdx + step + n) % n
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

func (m *model) replaceWord(replacement string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(replacement))
	m.wordEnd = m.wordStart + len(replacement)
}

func (m *model) refreshMatches() {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}
}

// recall moves through the history by step, switching to the mode each
// entry was submitted in.
func (m model) recall(step int) model {
	i := m.historyIdx + step
	if i < 0 {
		return m
	}

	if i >= m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches()

		return m
	}

	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.historyIdx = i

	if entry.Mode != m.mode {
		m = m.switchMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refreshMatches()

	return m
}

// switchMode switches to mode, preserving the input of the mode left.
func (m model) switchMode(mode inputMode) model {
	m.savedText[m.mode] = m.input.Value()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.savedText[mode])
	m.input.CursorEnd()
	m.refreshMatches()

	return m
}

func (m model) submit() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.savedText = [2]string{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.cfg.Logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.command(input)
	}

	m.cfg.Logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	return m, tea.Sequence(
		tea.Println(promptStyle.Render(evalPrompt)+inputStyle.Render(input)),
		tea.Println(evaluate(m.cfg.Registry, input, m.cfg.Logger)),
	)
}

func (m model) command(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.cfg.Logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", parts[0]))

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(listTokens(m.cfg.Registry)))

	case "t", "tick":
		return m, tea.Sequence(echo, m.tick())

	case "r", "reload":
		return m, tea.Sequence(echo, m.reload())

	case "e", "edit":
		if m.cfg.StatePath == "" {
			return m, tea.Sequence(echo,
				tea.Println(errorStyle.Render("no state file (use --state)")))
		}

		return m, tea.Sequence(echo, editState(m.cfg.StatePath))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"))
	}
}

func (m model) reload() tea.Cmd {
	if m.cfg.Reload == nil {
		return tea.Println(hintStyle.Render("no state file"))
	}

	if err := m.cfg.Reload(m.ctxFunc()); err != nil {
		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	return tea.Println(resultStyle.Render("✔ state reloaded"))
}

func (m model) tick() tea.Cmd {
	if m.cfg.Tick == nil {
		return tea.Println(hintStyle.Render("no content pack"))
	}

	res, err := m.cfg.Tick(m.ctxFunc())
	if err != nil {
		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	return tea.Println(formatResult(res))
}

// evaluate renders the value of template, or why it is not ready.
func evaluate(reg *registry.Registry, template string, logger log.Logger) string {
	s, err := token.Parse(template, reg,
		token.WithLogger(logger),
		token.WithCache(lang.DefaultCache()))
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	s.UpdateContext(reg)

	if v, ok := s.Value(); ok {
		return resultStyle.Render(v)
	}

	var b strings.Builder

	b.WriteString(errorStyle.Render("not ready"))

	for _, src := range s.InvalidTokens() {
		b.WriteString("\n  " + errorStyle.Render("unresolved "+src))

		name := token.ParseName(strings.Trim(src, "{}")).Name()
		if sugg := reg.Suggest(name, maxSuggestions); len(sugg) > 0 {
			b.WriteString(hintStyle.Render(" (did you mean " + strings.Join(sugg, ", ") + "?)"))
		}
	}

	return b.String()
}

// listTokens renders every registered token with a preview of its values.
func listTokens(reg *registry.Registry) string {
	var b strings.Builder

	for _, name := range reg.Names() {
		preview := "(not ready)"
		if values := reg.Values(token.NewName(name)); values != nil {
			preview = ellipsize(strings.Join(values, ", "), previewWidth)
		}

		b.WriteString(fmt.Sprintf("  %s %s\n", name, hintStyle.Render(preview)))
	}

	return b.String()
}

func formatResult(res pack.Result) string {
	if len(res.Changed) == 0 && len(res.Tokens) == 0 {
		return hintStyle.Render("no changes")
	}

	var b strings.Builder

	if len(res.Tokens) > 0 {
		b.WriteString(hintStyle.Render("tokens: " + strings.Join(res.Tokens, ", ")))
	}

	for _, p := range res.Changed {
		mark := resultStyle.Render("✔ ")
		if !p.IsApplied() {
			mark = errorStyle.Render("✘ ")
		}

		b.WriteString("\n" + mark + p.LogName())

		for _, f := range p.Fields() {
			b.WriteString("\n  " + f.Key + ": " + f.Value.String())
		}
	}

	return strings.TrimPrefix(b.String(), "\n")
}

func ellipsize(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	return string(r[:width-3]) + "..."
}
