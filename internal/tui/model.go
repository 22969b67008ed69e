// Package tui implements the terminal typing-test runner.
package tui

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"keystroke-lab/backend/internal/api"
	"keystroke-lab/backend/internal/models"
)

// sampleTexts are the prompts shown to the typist.
var sampleTexts = []string{
	"The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs. How vexingly quick daft zebras jump! The five boxing wizards jump quickly.",
	"In 2024, 73% of companies invested $5.2M in AI technology. During Q1-Q4, profits rose by 12.8%, while 9/10 executives reported satisfaction.",
	"Mr. Smith's car broke down at 123 Main St., causing a 30-minute delay. He called Dr. Johnson @ 3:45 PM to reschedule their 4:00 PM meeting!",
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateEnded
)

type tickMsg time.Time

type savedMsg struct {
	session models.Session
	err     error
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	headerStyle    = lipgloss.NewStyle().Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model drives the Idle -> Running -> Ended test loop. The countdown starts
// on the first keystroke; reaching zero ends the run and submits the session.
type Model struct {
	client   *api.Client
	duration int

	target []rune
	input  []rune

	st        state
	startedAt time.Time
	lastKeyAt time.Time
	timeLeft  int

	durations []float64

	result    *models.Session
	submitErr error

	width  int
	height int
}

func NewModel(client *api.Client, duration int) *Model {
	m := &Model{client: client, duration: duration}
	m.reset()
	return m
}

// reset returns the runner to Idle with a fresh prompt and no captured state.
func (m *Model) reset() {
	m.target = []rune(sampleTexts[rand.Intn(len(sampleTexts))])
	m.input = nil
	m.st = stateIdle
	m.startedAt = time.Time{}
	m.lastKeyAt = time.Time{}
	m.timeLeft = m.duration
	m.durations = nil
	m.result = nil
	m.submitErr = nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.st != stateRunning {
			return m, nil
		}
		m.timeLeft--
		if m.timeLeft <= 0 {
			return m, m.finish()
		}
		return m, tick()

	case savedMsg:
		if msg.err != nil {
			m.submitErr = msg.err
		} else {
			session := msg.session
			m.result = &session
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.st {
	case stateIdle:
		switch msg.Type {
		case tea.KeyEnter:
			m.st = stateRunning
			m.startedAt = time.Now()
			m.lastKeyAt = m.startedAt
			m.timeLeft = m.duration
			return m, tick()
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				return m, tea.Quit
			}
		}
		return m, nil

	case stateRunning:
		switch msg.Type {
		case tea.KeyBackspace, tea.KeyDelete:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeySpace:
			m.typeRunes([]rune{' '})
		case tea.KeyRunes:
			m.typeRunes(msg.Runes)
		}
		return m, nil

	case stateEnded:
		switch msg.Type {
		case tea.KeyEnter:
			m.reset()
			return m, nil
		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "r":
				m.reset()
				return m, nil
			case "q":
				return m, tea.Quit
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) typeRunes(runes []rune) {
	for _, r := range runes {
		if len(m.input) >= len(m.target) {
			return
		}
		now := time.Now()
		m.durations = append(m.durations, float64(now.Sub(m.lastKeyAt).Milliseconds()))
		m.lastKeyAt = now
		m.input = append(m.input, r)
	}
}

// errorPositions lists the input indexes that mismatch the prompt.
func (m *Model) errorPositions() []int {
	var positions []int
	for i, r := range m.input {
		if i >= len(m.target) || r != m.target[i] {
			positions = append(positions, i)
		}
	}
	return positions
}

func (m *Model) finish() tea.Cmd {
	m.st = stateEnded

	elapsed := time.Since(m.startedAt).Seconds()
	input := string(m.input)
	errorCount := len(m.errorPositions())

	req := models.SaveSessionRequest{
		WPM:             float64(calculateWPM(input, elapsed)),
		Accuracy:        float64(calculateAccuracy(len(m.input), errorCount)),
		TotalErrors:     errorCount,
		ErrorWords:      errorWords(string(m.target), input),
		TypingDurations: m.durations,
		Duration:        m.duration,
		Text:            string(m.target),
	}

	client := m.client
	return func() tea.Msg {
		session, err := client.SaveSession(req)
		return savedMsg{session: session, err: err}
	}
}

// calculateWPM mirrors the advisory client-side metric: whole words typed
// divided by elapsed minutes, rounded.
func calculateWPM(input string, elapsedSeconds float64) int {
	if elapsedSeconds <= 0 {
		return 0
	}
	words := len(strings.Fields(input))
	minutes := elapsedSeconds / 60
	return int(math.Round(float64(words) / minutes))
}

// calculateAccuracy is the advisory percentage of correct characters.
func calculateAccuracy(totalChars, errorCount int) int {
	if totalChars == 0 {
		return 0
	}
	return int(math.Round(float64(totalChars-errorCount) / float64(totalChars) * 100))
}

// errorWords lists the typed words that differ from the prompt's word at the
// same position.
func errorWords(target, input string) []string {
	targetWords := strings.Split(target, " ")
	inputWords := strings.Split(input, " ")

	words := []string{}
	for i, w := range inputWords {
		if w == "" {
			continue
		}
		if i >= len(targetWords) || w != targetWords[i] {
			words = append(words, w)
		}
	}
	return words
}

func (m *Model) View() string {
	var b strings.Builder

	switch m.st {
	case stateIdle:
		b.WriteString(headerStyle.Render(fmt.Sprintf("Typing Test (%ds)", m.duration)))
		b.WriteString("\n\n")
		b.WriteString(pendingStyle.Render(string(m.target)))
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("Press Enter to start, q to quit"))

	case stateRunning:
		b.WriteString(headerStyle.Render(fmt.Sprintf("Time: %ds", m.timeLeft)))
		b.WriteString("\n\n")
		b.WriteString(m.renderPrompt())
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("Type the text above. Ctrl+C to quit"))

	case stateEnded:
		b.WriteString(headerStyle.Render("Time's up!"))
		b.WriteString("\n\n")
		b.WriteString(m.renderResults())
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("Enter/r to restart, q to quit"))
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Width(contentWidth(m.width)).Render(b.String()))
	}
	return b.String()
}

func contentWidth(width int) int {
	w := int(float64(width) * 0.7)
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) renderPrompt() string {
	var b strings.Builder
	for i, r := range m.target {
		switch {
		case i >= len(m.input):
			b.WriteString(pendingStyle.Render(string(r)))
		case m.input[i] == r:
			b.WriteString(correctStyle.Render(string(r)))
		default:
			b.WriteString(incorrectStyle.Render(string(r)))
		}
	}
	return b.String()
}

func (m *Model) renderResults() string {
	if m.submitErr != nil {
		return incorrectStyle.Render(fmt.Sprintf("Failed to save session: %v", m.submitErr))
	}
	if m.result == nil {
		return footerStyle.Render("Saving session...")
	}

	s := m.result
	return fmt.Sprintf(
		"WPM: %.0f\nAccuracy: %.0f%%\nErrors: %d\n\nImpulsivity: %.2f\nCognitive load: %.2f\nResilience: %.2f\nAnxiety: %.2f",
		s.WPM, s.Accuracy, s.TotalErrors,
		s.Insights.Impulsivity, s.Insights.CognitiveLoad, s.Insights.Resilience, s.Insights.Anxiety,
	)
}
