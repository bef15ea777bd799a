package tui

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaspy/toeic-assessment-poc/data"
	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
	"github.com/chaspy/toeic-assessment-poc/internal/feedback"
	"github.com/chaspy/toeic-assessment-poc/internal/item"
	"github.com/chaspy/toeic-assessment-poc/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// unavailableEngine fails every full finish like a generator outage.
type unavailableEngine struct {
	*assessment.Engine
}

func (e unavailableEngine) Finish(context.Context, string) (assessment.Result, error) {
	return assessment.Result{}, assessment.ErrGeneratorUnavailable
}

func newEngine(t *testing.T) *assessment.Engine {
	t.Helper()
	pool, err := item.ParseJSON(data.DefaultPool)
	require.NoError(t, err)
	e, err := assessment.New(session.NewStore[assessment.Result](), pool, item.DefaultBlueprint(), feedback.NewCatalogGenerator(nil))
	require.NoError(t, err)
	return e
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// run executes cmd and feeds every message it yields, except timer ticks,
// back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
	case startedMsg, answeredMsg, finishedMsg:
		var next tea.Cmd
		m, next = update(t, m, msg)
		m = run(t, m, next)
	}
	return m
}

func started(t *testing.T, e Engine) Model {
	t.Helper()
	m := New(context.Background(), e)
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	m.second = time.Nanosecond
	m = run(t, m, m.start())
	require.Equal(t, phaseItem, m.phase)
	require.Len(t, m.items, 20)
	return m
}

func TestAnswerEveryItem(t *testing.T) {
	m := started(t, newEngine(t))

	for i := range 20 {
		require.Equal(t, i, m.idx)
		it := m.items[i]
		key := rune('a' + it.Answer)
		if i >= 12 {
			key = rune('a' + (it.Answer+1)%len(it.Options))
		}
		var cmd tea.Cmd
		m, cmd = update(t, m, keyPress(key))
		require.NotNil(t, cmd)
		m = run(t, m, cmd)
	}

	require.Equal(t, phaseResult, m.phase)
	assert.False(t, m.lite)
	assert.Equal(t, 20, m.answered)
	assert.Equal(t, 12, m.result.RawCorrect)
	assert.Equal(t, 300, m.result.ScaledReading)
	assert.Equal(t, [2]int{240, 360}, m.result.ProvisionalCI)
	assert.NotEmpty(t, m.result.Insights)

	_, cmd := update(t, m, keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCursorAndEnter(t *testing.T) {
	m := started(t, newEngine(t))

	m, _ = update(t, m, specialKey(tea.KeyDown))
	m, _ = update(t, m, specialKey(tea.KeyDown))
	m, _ = update(t, m, specialKey(tea.KeyUp))
	assert.Equal(t, 1, m.choice.Cursor)

	m, cmd := update(t, m, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.choice.Chosen)

	// Further keys are ignored while the answer is in flight.
	m, extra := update(t, m, keyPress('c'))
	assert.Nil(t, extra)
	assert.Equal(t, 1, m.choice.Chosen)

	m = run(t, m, cmd)
	assert.Equal(t, 1, m.idx)
}

func TestTimeLimitSkipsItem(t *testing.T) {
	m := started(t, newEngine(t))
	limit := m.items[0].TimeLimitSec
	require.Positive(t, limit)

	stale := tickMsg{Seq: m.seq - 1}
	m, cmd := update(t, m, stale)
	assert.Nil(t, cmd)
	assert.Equal(t, limit, m.remaining)

	for range limit - 1 {
		m, cmd = update(t, m, tickMsg{Seq: m.seq})
		require.NotNil(t, cmd)
	}
	assert.Equal(t, 0, m.idx)
	assert.Equal(t, 1, m.remaining)

	m, _ = update(t, m, tickMsg{Seq: m.seq})
	assert.Equal(t, 1, m.idx)
	assert.Equal(t, 1, m.timedOut)
	assert.Equal(t, 0, m.answered)
	assert.Equal(t, m.items[1].TimeLimitSec, m.remaining)
}

func TestFinishEarly(t *testing.T) {
	m := started(t, newEngine(t))
	it := m.items[0]

	m, cmd := update(t, m, keyPress(rune('a'+it.Answer)))
	m = run(t, m, cmd)

	m, _ = update(t, m, specialKey(tea.KeyEscape))
	require.Equal(t, phaseConfirmQuit, m.phase)
	m, _ = update(t, m, keyPress('n'))
	require.Equal(t, phaseItem, m.phase)

	m, _ = update(t, m, specialKey(tea.KeyEscape))
	m, cmd = update(t, m, keyPress('y'))
	require.Equal(t, phaseScoring, m.phase)
	m = run(t, m, cmd)

	require.Equal(t, phaseResult, m.phase)
	assert.Equal(t, 1, m.result.RawCorrect)
	require.Len(t, m.result.Responses, 20)
	assert.Nil(t, m.result.Responses[1].Selected)
}

func TestFallsBackToLiteResult(t *testing.T) {
	m := started(t, unavailableEngine{newEngine(t)})

	m, _ = update(t, m, specialKey(tea.KeyEscape))
	m, cmd := update(t, m, keyPress('y'))
	m = run(t, m, cmd)

	require.Equal(t, phaseResult, m.phase)
	assert.True(t, m.lite)
	assert.Empty(t, m.result.Insights)
	assert.Equal(t, assessment.Disclaimer, m.result.Disclaimer)
}

func TestViewRendersPhases(t *testing.T) {
	m := started(t, newEngine(t))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	frame := m.render()
	assert.Contains(t, frame, "Question 1 of 20")
	assert.Contains(t, frame, "A)  ")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Contains(t, m.render(), "Terminal too small")
}
