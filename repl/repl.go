// Package repl implements an interactive front end for the analyzer and
// IR generator: source typed at the prompt is lexed, parsed, analyzed,
// and lowered, with the symbol table and generated IR (or diagnostics)
// rendered in a styled history pane.
//
// It uses the Charm libraries (Bubble Tea, Bubbles, Lipgloss) for a
// modern terminal interface with command history and syntax-aware
// coloring, following the Elm architecture: Init/Update/View over an
// immutable model.
package repl

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dr8co/tacc/ir"
	"github.com/dr8co/tacc/lexer"
	"github.com/dr8co/tacc/parser"
	"github.com/dr8co/tacc/semantic"
	"github.com/dr8co/tacc/token"
)

const (
	// Prompt is the default prompt for the REPL.
	Prompt = ">> "

	// ContPrompt is the continuation prompt used in multiline input mode.
	ContPrompt = ".. "
)

// Options configures the REPL's presentation.
type Options struct {
	NoColor bool // Disable styling
}

// Start initializes and runs the REPL as a Bubble Tea program.
func Start(username string, options Options) {
	p := tea.NewProgram(initialModel(username, options))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	irStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	parseErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	semanticErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF8700")).
				Bold(true)

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	identifierStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	literalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	operatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	delimiterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))
)

// outcomeKind is what an evaluated snippet produced.
type outcomeKind int

const (
	outcomeIR outcomeKind = iota
	outcomeParseError
	outcomeSemanticError
)

type evalResultMsg struct {
	symbols string // only set when kind == outcomeIR
	output  string
	kind    outcomeKind
	elapsed time.Duration
}

type historyEntry struct {
	input          string
	symbols        string
	output         string
	kind           outcomeKind
	evaluationTime time.Duration
}

type model struct {
	textInput       textinput.Model
	history         []historyEntry
	username        string
	evaluating      bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

func initialModel(username string, options Options) model {
	ti := textinput.New()
	ti.Placeholder = "Enter a function or declaration"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput: ti,
		username:  username,
		spinner:   s,
		options:   options,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced reports whether brackets, braces, and parentheses in input
// are balanced, used to decide whether to keep collecting multiline
// input before analyzing it.
func isBalanced(input string) bool {
	var stack []rune
	for _, char := range input {
		switch char {
		case '(', '{':
			stack = append(stack, char)
		case ')':
			if len(stack) == 0 || stack[len(stack)-1] != '(' {
				return false
			}
			stack = stack[:len(stack)-1]
		case '}':
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// evalCmd analyzes and lowers input asynchronously, as a tea.Cmd, so the
// spinner keeps animating while it runs.
func evalCmd(input string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		l := lexer.New(input)
		p := parser.New(l)
		program := p.ParseProgram()

		if len(p.Errors()) != 0 {
			return evalResultMsg{
				output:  formatParseErrors(p.Errors()),
				kind:    outcomeParseError,
				elapsed: time.Since(start),
			}
		}

		var diag strings.Builder
		az := semantic.New(&diag)
		az.Analyze(program)

		if az.Errors() > 0 {
			return evalResultMsg{
				output:  diag.String(),
				kind:    outcomeSemanticError,
				elapsed: time.Since(start),
			}
		}

		var symbols strings.Builder
		az.Table().Dump(&symbols)
		generated := ir.Generate(program)

		return evalResultMsg{
			symbols: symbols.String(),
			output:  generated.String(),
			kind:    outcomeIR,
			elapsed: time.Since(start),
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			symbols:        msg.symbols,
			output:         msg.output,
			kind:           msg.kind,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}
	return m, cmd
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	input := m.textInput.Value()

	if input == "" {
		if m.isMultiline {
			if m.multilineBuffer == "" {
				m.isMultiline = false
				return m, nil
			}
			return m.startEval(m.multilineBuffer)
		}
		return m, nil
	}

	if m.isMultiline {
		m.multilineBuffer += "\n" + input
		m.textInput.SetValue("")
		if isBalanced(m.multilineBuffer) {
			return m.startEval(m.multilineBuffer)
		}
		return m, nil
	}

	if !isBalanced(input) {
		m.isMultiline = true
		m.multilineBuffer = input
		m.textInput.SetValue("")
		return m, nil
	}

	return m.startEval(input)
}

func (m model) startEval(buffer string) (tea.Model, tea.Cmd) {
	m.evaluating = true
	m.currentInput = buffer
	m.textInput.SetValue("")
	m.isMultiline = false
	m.multilineBuffer = ""
	return m, evalCmd(buffer)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " tacc — interactive analyzer "))
	s.WriteString("\n")
	if m.username != "" {
		fmt.Fprintf(&s, "\nHello %s! Enter a function or top-level declaration.\n", m.username)
	}
	s.WriteString("\n")

	for _, entry := range m.history {
		m.renderEntry(&s, entry)
	}

	if m.evaluating {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.highlightCode(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" analyzing...\n\n")
	}

	if m.isMultiline && !m.evaluating {
		s.WriteString(m.applyStyle(historyStyle, "Current multiline input:\n"))
		s.WriteString(m.highlightCode(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.evaluating {
		if m.isMultiline {
			m.textInput.Prompt = m.applyStyle(promptStyle, ContPrompt)
		} else {
			m.textInput.Prompt = m.applyStyle(promptStyle, Prompt)
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	help := "\nPress Esc or Ctrl+C/D to exit"
	if m.isMultiline {
		help += " | empty line evaluates the buffer"
	} else {
		help += " | unbalanced brackets enter multiline mode"
	}
	s.WriteString(m.applyStyle(historyStyle, help))

	return s.String()
}

func (m model) renderEntry(s *strings.Builder, entry historyEntry) {
	for i, line := range strings.Split(entry.input, "\n") {
		if i == 0 {
			s.WriteString(m.applyStyle(promptStyle, Prompt))
		} else {
			s.WriteString(m.applyStyle(promptStyle, ContPrompt))
		}
		s.WriteString(m.highlightCode(line))
		s.WriteString("\n")
	}

	switch entry.kind {
	case outcomeParseError:
		s.WriteString(m.applyStyle(parseErrorStyle, entry.output))
	case outcomeSemanticError:
		s.WriteString(m.applyStyle(semanticErrorStyle, entry.output))
	default:
		s.WriteString(m.applyStyle(symbolStyle, entry.symbols))
		s.WriteString("\n")
		s.WriteString(m.applyStyle(irStyle, entry.output))
	}

	if entry.evaluationTime > 10*time.Millisecond {
		s.WriteString(m.applyStyle(historyStyle, fmt.Sprintf(" (%.2fs)", entry.evaluationTime.Seconds())))
	}
	s.WriteString("\n\n")
}

func formatParseErrors(errors []string) string {
	var s strings.Builder
	s.WriteString("Parser Errors:\n")
	for i, msg := range errors {
		fmt.Fprintf(&s, "  %d. %s\n", i+1, msg)
	}
	return s.String()
}

// highlightCode applies syntax-aware coloring to a line of source, the
// same way the teacher's REPL colors keywords/operators/literals —
// adapted to this grammar's token set (type keywords, no string/array
// literals as first-class values).
func (m model) highlightCode(code string) string {
	if m.options.NoColor {
		return code
	}

	l := lexer.New(code)
	var s strings.Builder
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		switch tok.Type {
		case token.KwInt, token.KwChar, token.KwVoid, token.KwIf, token.KwElse,
			token.KwWhile, token.KwFor, token.KwReturn:
			s.WriteString(keywordStyle.Render(tok.Literal))
		case token.Ident:
			s.WriteString(identifierStyle.Render(tok.Literal))
		case token.Int, token.Char, token.String:
			s.WriteString(literalStyle.Render(tok.Literal))
		case token.Assign, token.Plus, token.Minus, token.Bang, token.Asterisk, token.Slash,
			token.Percent, token.Lt, token.Gt, token.Lte, token.Gte, token.Eq, token.Neq,
			token.And, token.Or:
			s.WriteString(operatorStyle.Render(tok.Literal))
		case token.Comma, token.Semicolon, token.Lparen, token.Rparen, token.Lbrace, token.Rbrace:
			s.WriteString(delimiterStyle.Render(tok.Literal))
		default:
			s.WriteString(tok.Literal)
		}
		s.WriteString(" ")
	}
	return strings.TrimRight(s.String(), " ")
}
