package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tarotquiz/internal/deck"
	"github.com/verte-zerg/tarotquiz/internal/model"
	"github.com/verte-zerg/tarotquiz/internal/quiz"
)

// SessionLister provides past session aggregates for the footer.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

type screen int

const (
	screenForm screen = iota
	screenQuestion
	screenResults
)

const (
	fieldName = iota
	fieldEmail
	fieldCount
	fieldCountTotal
)

// Model implements the Bubble Tea quiz UI.
type Model struct {
	runner  *quiz.Runner
	deck    *deck.Deck
	history SessionLister

	width  int
	height int

	screen   screen
	inputs   []textinput.Model
	focus    int
	countIdx int
	formErr  string

	question quiz.Question
	cursor   int
	feedback *quiz.Feedback
	explain  bool
	errMsg   string

	result quiz.Result

	lastScore int
	lastTotal int
	hasLast   bool
}

var (
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	rightStyle    = accentStyle.Copy().Bold(true)
	cursorStyle   = accentStyle.Copy().Underline(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle    = textStyle.Copy().Bold(true)
	labelStyle    = pendingStyle.Copy().Bold(true)
	explainBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(0, 1)
)

// NewModel constructs a quiz TUI model. The form is prefilled from profile.
// history may be nil.
func NewModel(runner *quiz.Runner, d *deck.Deck, history SessionLister, profile model.Profile) *Model {
	m := &Model{
		runner:  runner,
		deck:    d,
		history: history,
	}
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Your name"
	name.CharLimit = 64
	name.SetValue(profile.Name)

	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@example.com"
	email.CharLimit = 128
	email.SetValue(profile.Email)

	m.inputs = []textinput.Model{name, email}
	m.countIdx = countIndex(profile.Count)
	m.setFocus(fieldName)
	return m
}

func countIndex(count int) int {
	for i, n := range model.SessionLengths {
		if n == count {
			return i
		}
	}
	return 0
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenForm:
			return m.updateForm(msg)
		case screenQuestion:
			return m.updateQuestion(msg)
		default:
			return m.updateResults(msg)
		}
	default:
		if m.screen == screenForm && m.focus < len(m.inputs) {
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCountTotal)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCountTotal - 1) % fieldCountTotal)
		return m, nil
	case "enter":
		if m.focus < fieldCount {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		m.submitForm()
		return m, nil
	}
	if m.focus == fieldCount {
		switch msg.String() {
		case "left", "h":
			if m.countIdx > 0 {
				m.countIdx--
			}
		case "right", "l":
			if m.countIdx < len(model.SessionLengths)-1 {
				m.countIdx++
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) profile() model.Profile {
	return model.Profile{
		Name:  m.inputs[fieldName].Value(),
		Email: m.inputs[fieldEmail].Value(),
		Count: model.SessionLengths[m.countIdx],
	}
}

func (m *Model) submitForm() {
	if err := m.runner.Start(context.Background(), m.profile()); err != nil {
		m.formErr = err.Error()
		return
	}
	m.formErr = ""
	m.loadFooterStats()
	m.loadQuestion()
}

func (m *Model) loadQuestion() {
	q, err := m.runner.Current()
	if err != nil {
		logErrf("failed to load question: %v\n", err)
		m.errMsg = err.Error()
		return
	}
	m.question = q
	m.cursor = 0
	m.feedback = nil
	m.explain = false
	m.errMsg = ""
	m.screen = screenQuestion
}

func (m *Model) updateQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "q":
		return m, tea.Quit
	case "?", "i":
		if m.feedback != nil {
			m.explain = !m.explain
		}
		return m, nil
	case "up", "k":
		if m.feedback == nil && m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.feedback == nil && m.cursor < len(m.question.Options)-1 {
			m.cursor++
		}
		return m, nil
	case "enter", " ":
		if m.feedback == nil {
			m.answer(m.cursor)
			return m, nil
		}
		m.next()
		return m, nil
	}
	if n, err := strconv.Atoi(key); err == nil && m.feedback == nil {
		if n >= 1 && n <= len(m.question.Options) {
			m.cursor = n - 1
			m.answer(m.cursor)
		}
	}
	return m, nil
}

func (m *Model) answer(idx int) {
	fb, err := m.runner.Answer(context.Background(), m.question.Options[idx])
	if err != nil {
		// The answer is scored even when saving fails.
		logErrf("failed to save progress: %v\n", err)
		m.errMsg = "progress not saved"
		if errors.Is(err, quiz.ErrInvalidState) {
			return
		}
	}
	m.feedback = &fb
}

func (m *Model) next() {
	if err := m.runner.Next(context.Background()); err != nil {
		logErrf("%v\n", err)
		if errors.Is(err, quiz.ErrInvalidState) {
			return
		}
	}
	if m.runner.State() == quiz.Complete {
		res, err := m.runner.Result()
		if err != nil {
			logErrf("failed to load result: %v\n", err)
			return
		}
		m.result = res
		m.screen = screenResults
		return
	}
	m.loadQuestion()
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "r":
		p := m.runner.Session().Profile
		m.runner.Reset()
		m.inputs[fieldName].SetValue(p.Name)
		m.inputs[fieldEmail].SetValue(p.Email)
		m.countIdx = countIndex(p.Count)
		m.setFocus(fieldName)
		m.screen = screenForm
		return m, textinput.Blink
	case "esc", "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) loadFooterStats() {
	m.hasLast = false
	if m.history == nil {
		return
	}
	ctx := context.Background()
	sessions, err := m.history.ListSessions(ctx, model.StatsConfig{UserKey: m.runner.Session().UserKey})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastScore = last.Score
	m.lastTotal = last.Total
	m.hasLast = true
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenForm:
		content = m.viewForm()
	case screenQuestion:
		content = m.viewQuestion()
	default:
		content = m.viewResults()
	}
	if m.width == 0 || m.height == 0 {
		footer := m.renderFooter()
		if footer == "" {
			return content
		}
		return content + "\n\n" + footer
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 72
	}
	w := int(float64(m.width) * 0.70)
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tarot Quiz"))
	b.WriteString("\n\n")
	labels := []string{"Name", "Email"}
	for i, in := range m.inputs {
		b.WriteString(m.fieldLabel(i, labels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	b.WriteString(m.fieldLabel(fieldCount, "Questions"))
	b.WriteString("\n")
	counts := make([]string, len(model.SessionLengths))
	for i, n := range model.SessionLengths {
		s := strconv.Itoa(n)
		switch {
		case i == m.countIdx && m.focus == fieldCount:
			counts[i] = cursorStyle.Render(s)
		case i == m.countIdx:
			counts[i] = accentStyle.Render(s)
		default:
			counts[i] = pendingStyle.Render(s)
		}
	}
	b.WriteString(strings.Join(counts, "  "))
	if m.formErr != "" {
		b.WriteString("\n\n")
		b.WriteString(wrongStyle.Render(m.formErr))
	}
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("tab next field · ←/→ change count · enter start"))
	return b.String()
}

func (m *Model) fieldLabel(field int, label string) string {
	if m.focus == field {
		return accentStyle.Render(label)
	}
	return labelStyle.Render(label)
}

func (m *Model) viewQuestion() string {
	q := m.question
	width := m.contentWidth()
	var b strings.Builder
	title := q.Card.Name
	if q.Mode == model.ModeReversed {
		title += " (reversed)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(pendingStyle.Render(q.Prompt))
	b.WriteString("\n\n")
	for i, opt := range q.Options {
		line := indentWrapped(fmt.Sprintf("%d) ", i+1), opt, width)
		b.WriteString(m.optionStyle(i, opt).Render(line))
		b.WriteString("\n")
	}
	if m.feedback != nil {
		b.WriteString("\n")
		if m.feedback.Correct {
			b.WriteString(rightStyle.Render("Correct!"))
		} else {
			b.WriteString(wrongStyle.Render("Incorrect."))
			b.WriteString(" ")
			b.WriteString(textStyle.Render(strings.Join(wrapText("The answer is: "+m.feedback.CorrectAnswer, width), "\n")))
		}
		b.WriteString("\n")
		if m.explain {
			b.WriteString("\n")
			b.WriteString(m.viewExplain(width))
			b.WriteString("\n")
		}
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(wrongStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.questionHelp()))
	return b.String()
}

func (m *Model) optionStyle(i int, opt string) lipgloss.Style {
	if m.feedback == nil {
		if i == m.cursor {
			return cursorStyle
		}
		return textStyle
	}
	switch {
	case opt == m.feedback.CorrectAnswer:
		return rightStyle
	case opt == m.feedback.Chosen:
		return wrongStyle
	default:
		return pendingStyle
	}
}

func (m *Model) questionHelp() string {
	if m.feedback == nil {
		return "↑/↓ choose · 1-4 or enter lock in · q quit"
	}
	next := "enter next"
	if m.runner.IsLast() {
		next = "enter finish"
	}
	if m.explain {
		return next + " · ? hide details · q quit"
	}
	return next + " · ? learn more · q quit"
}

func (m *Model) viewExplain(width int) string {
	var b strings.Builder
	for i, f := range m.deck.Explain(m.question.Card) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(f.Label))
		b.WriteString("\n")
		b.WriteString(textStyle.Render(strings.Join(wrapText(f.Value, width-4), "\n")))
		if f.Description != "" {
			b.WriteString("\n")
			b.WriteString(pendingStyle.Render(strings.Join(wrapText(f.Description, width-4), "\n")))
		}
	}
	return explainBorder.Width(width).Render(b.String())
}

func (m *Model) viewResults() string {
	r := m.result
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Congratulations, %s!", r.Name)))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(fmt.Sprintf("You scored %d out of %d", r.Score, r.Total)))
	b.WriteString("\n")
	b.WriteString(accentStyle.Render(r.Percent + "%"))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("enter restart · q quit"))
	return b.String()
}

func (m *Model) renderFooter() string {
	if m.screen != screenQuestion {
		return ""
	}
	segments := []string{
		fmt.Sprintf("Question %d of %d · Score %d", m.question.Number, m.question.Total, m.runner.Session().Score),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d/%d · %s%%", m.lastScore, m.lastTotal, quiz.Percent(m.lastScore, m.lastTotal)))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
