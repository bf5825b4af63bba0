// Package tui is the interactive terminal front end: type to search the
// corpus, prefix a line with "?" to ask the question-answering pipeline.
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"blogsearch/internal/domain"
)

// SearchPort is the TUI-facing subset of the searcher.
type SearchPort interface {
	Search(ctx context.Context, query string, limit int, minSimilarity float64) ([]domain.Result, error)
}

// AskPort runs the question-answering pipeline.
type AskPort interface {
	Ask(ctx context.Context, question string, ids []int64) domain.Answer
}

// Config carries the ranking defaults the TUI queries with.
type Config struct {
	Limit         int
	MinSimilarity float64
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	searcher  SearchPort
	asker     AskPort
	cfg       Config
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.Result
	answer    *domain.Answer
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(searcher SearchPort, asker AskPort, cfg Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Search the articles, or start with ? to ask a question"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		searcher: searcher,
		asker:    asker,
		cfg:      cfg,
		input:    ti,
		viewport: vp,
		status:   "Ready. Type to search.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-rh)
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line != "" {
				if strings.HasPrefix(line, "?") {
					m.runAsk(strings.TrimSpace(strings.TrimPrefix(line, "?")))
				} else {
					m.runSearch(line)
				}
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "down":
			if m.answer == nil && len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "up":
			if m.answer == nil && len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runSearch(query string) {
	m.answer = nil
	res, err := m.searcher.Search(context.Background(), query, m.cfg.Limit, m.cfg.MinSimilarity)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
		return
	}
	m.status = fmt.Sprintf("Results for %q", query)
	m.results = res
	m.cursor = 0
	m.lastQuery = query
}

func (m *Model) runAsk(question string) {
	if question == "" {
		m.status = "Type a question after the ?"
		return
	}
	m.results = nil
	m.status = fmt.Sprintf("Answer for %q", question)
	answer := m.asker.Ask(context.Background(), question, nil)
	m.answer = &answer
}

// View renders the TUI layout and current content.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Blog Search")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	content := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + content + "\n" + input + "\n" + status
}

func (m Model) renderContent() string {
	if m.answer != nil {
		return renderAnswer(*m.answer)
	}
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	score := "keyword match"
	if r.Score.Valid {
		score = fmt.Sprintf("score=%.3f", r.Score.Value)
	}
	title := fmt.Sprintf("Result %d/%d  %s  %s", m.cursor+1, len(m.results), score, r.Document.Title)
	body := highlightBestSentence(clip(r.Document.Content, 1200), m.lastQuery)
	tags := ""
	if len(r.Document.TagList()) > 0 {
		tags = "\nTags: " + strings.Join(r.Document.TagList(), ", ")
	}
	return title + tags + "\n\n" + body
}

func renderAnswer(a domain.Answer) string {
	if !a.Success {
		return "Error: " + a.Error
	}
	var b strings.Builder
	if a.Answer != nil {
		b.WriteString(*a.Answer)
	}
	if len(a.Sources) > 0 {
		b.WriteString("\n\nSources:\n")
		for i, src := range a.Sources {
			score := "-"
			if src.Similarity.Valid {
				score = fmt.Sprintf("%.3f", src.Similarity.Value)
			}
			fmt.Fprintf(&b, "  %d. %s (similarity %s)\n", i+1, src.Title, score)
		}
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := tokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlap(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlap(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := map[string]struct{}{}
	for _, t := range wordRe.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

func clip(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
