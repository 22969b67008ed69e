package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRunnerStartsOnEnter(t *testing.T) {
	m := NewModel(nil, 15)
	require.Equal(t, stateIdle, m.st)

	updated, cmd := m.Update(key(tea.KeyEnter))
	m = updated.(*Model)

	assert.Equal(t, stateRunning, m.st)
	assert.Equal(t, 15, m.timeLeft)
	assert.NotNil(t, cmd, "running state must schedule a tick")
}

func TestRunnerIgnoresTypingWhileIdle(t *testing.T) {
	m := NewModel(nil, 15)

	updated, _ := m.Update(runes("a"))
	m = updated.(*Model)

	assert.Equal(t, stateIdle, m.st)
	assert.Empty(t, m.input)
}

func TestRunnerCapturesKeystrokesAndDurations(t *testing.T) {
	m := NewModel(nil, 15)
	updated, _ := m.Update(key(tea.KeyEnter))
	m = updated.(*Model)

	for _, ch := range []string{"a", "b", "c"} {
		updated, _ = m.Update(runes(ch))
		m = updated.(*Model)
	}

	assert.Equal(t, "abc", string(m.input))
	assert.Len(t, m.durations, 3)
	for _, d := range m.durations {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestRunnerBackspace(t *testing.T) {
	m := NewModel(nil, 15)
	updated, _ := m.Update(key(tea.KeyEnter))
	m = updated.(*Model)

	updated, _ = m.Update(runes("ab"))
	m = updated.(*Model)
	updated, _ = m.Update(key(tea.KeyBackspace))
	m = updated.(*Model)

	assert.Equal(t, "a", string(m.input))
}

func TestCountdownEndsRun(t *testing.T) {
	m := NewModel(nil, 15)
	updated, _ := m.Update(key(tea.KeyEnter))
	m = updated.(*Model)
	m.timeLeft = 1

	updated, cmd := m.Update(tickMsg{})
	m = updated.(*Model)

	assert.Equal(t, stateEnded, m.st)
	assert.NotNil(t, cmd, "ending the run must submit the session")
}

func TestRestartResetsCapturedState(t *testing.T) {
	m := NewModel(nil, 15)
	updated, _ := m.Update(key(tea.KeyEnter))
	m = updated.(*Model)
	updated, _ = m.Update(runes("xyz"))
	m = updated.(*Model)
	m.timeLeft = 1
	updated, _ = m.Update(tickMsg{})
	m = updated.(*Model)
	require.Equal(t, stateEnded, m.st)

	updated, _ = m.Update(runes("r"))
	m = updated.(*Model)

	assert.Equal(t, stateIdle, m.st)
	assert.Empty(t, m.input)
	assert.Empty(t, m.durations)
	assert.Equal(t, 15, m.timeLeft)
	assert.Nil(t, m.result)
}

func TestErrorPositions(t *testing.T) {
	m := NewModel(nil, 15)
	m.target = []rune("abc def")
	m.input = []rune("abx d")

	assert.Equal(t, []int{2}, m.errorPositions())
}

func TestCalculateWPM(t *testing.T) {
	// 10 words in 30 seconds -> 20 WPM.
	input := "w w w w w w w w w w"
	assert.Equal(t, 20, calculateWPM(input, 30))
	assert.Equal(t, 0, calculateWPM(input, 0))
	assert.Equal(t, 0, calculateWPM("", 30))
}

func TestCalculateAccuracy(t *testing.T) {
	assert.Equal(t, 90, calculateAccuracy(100, 10))
	assert.Equal(t, 100, calculateAccuracy(50, 0))
	assert.Equal(t, 0, calculateAccuracy(0, 0))
}

func TestErrorWords(t *testing.T) {
	got := errorWords("the quick brown fox", "the quikc brown")
	assert.Equal(t, []string{"quikc"}, got)

	got = errorWords("the quick", "the quick")
	assert.Empty(t, got)

	// Typing past the prompt counts as errors.
	got = errorWords("one", "one two")
	assert.Equal(t, []string{"two"}, got)
}
