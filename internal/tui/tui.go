// Package tui is a terminal client that takes an assessment against an
// in-process engine.
package tui

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
	"github.com/chaspy/toeic-assessment-poc/internal/item"
	"github.com/chaspy/toeic-assessment-poc/internal/ui/components"
)

// UserAgent is recorded on sessions started from the terminal.
const UserAgent = "toeic-assessment-tui"

// Engine is the part of the assessment engine the client drives.
type Engine interface {
	Start(ctx context.Context, userAgent string) assessment.StartOutput
	Answer(ctx context.Context, in assessment.AnswerInput) (assessment.NextOutput, error)
	Finish(ctx context.Context, sessionID string) (assessment.Result, error)
	FinishLite(ctx context.Context, sessionID string) (assessment.Result, error)
}

var _ Engine = (*assessment.Engine)(nil)

type phase int

const (
	phaseStarting phase = iota
	phaseItem
	phaseConfirmQuit
	phaseScoring
	phaseResult
	phaseError
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	engine Engine
	now    func() time.Time
	second time.Duration // countdown tick interval

	phase     phase
	sessionID string
	items     []item.Item
	idx       int
	choice    components.MultiChoice
	shownAt   time.Time
	remaining int
	seq       int
	answered  int
	timedOut  int

	result assessment.Result
	lite   bool
	err    error

	spinner spinner.Model
	width   int
	height  int
}

// New returns a model that starts a session on Init.
func New(ctx context.Context, engine Engine) Model {
	return Model{
		ctx:     ctx,
		engine:  engine,
		now:     time.Now,
		second:  time.Second,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(ctx context.Context, engine Engine) error {
	p := tea.NewProgram(New(ctx, engine), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case startedMsg:
		m.sessionID = msg.Out.SessionID
		m.items = msg.Out.Items
		if len(m.items) == 0 {
			m.phase = phaseError
			m.err = errors.New("the session has no items")
			return m, nil
		}
		cmd := m.show(0)
		return m, cmd

	case tickMsg:
		return m.handleTick(msg)

	case answeredMsg:
		if msg.Err != nil {
			m.phase = phaseError
			m.err = msg.Err
			return m, nil
		}
		m.answered++
		return m.advance()

	case finishedMsg:
		if msg.Err != nil {
			m.phase = phaseError
			m.err = msg.Err
			return m, nil
		}
		m.phase = phaseResult
		m.result = msg.Result
		m.lite = msg.Lite
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseStarting && m.phase != phaseScoring {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseItem:
		if m.choice.Submitted {
			// Waiting for the engine to record the answer.
			return m, nil
		}
		if key == "esc" {
			m.phase = phaseConfirmQuit
			return m, nil
		}
		m.choice = m.choice.Update(msg)
		if m.choice.Submitted {
			m.seq++ // stop the clock
			return m, m.answer(m.choice.Chosen)
		}

	case phaseConfirmQuit:
		switch key {
		case "y", "Y":
			return m.finish()
		case "n", "N", "esc":
			m.phase = phaseItem
			if m.remaining <= 0 {
				m.timedOut++
				return m.advance()
			}
		}

	case phaseResult, phaseError:
		switch key {
		case "q", "enter", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleTick counts the current item down and moves on, unanswered, when
// its time limit runs out.
func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.seq || (m.phase != phaseItem && m.phase != phaseConfirmQuit) {
		return m, nil
	}
	m.remaining--
	if m.remaining > 0 {
		return m, m.tick()
	}
	if m.phase == phaseConfirmQuit {
		// The clock keeps running behind the dialog; wait for the answer.
		return m, nil
	}
	m.timedOut++
	return m.advance()
}

// show puts item i on screen and starts its clock.
func (m *Model) show(i int) tea.Cmd {
	it := m.items[i]
	m.phase = phaseItem
	m.idx = i
	m.choice = components.NewMultiChoice(it.Stem, it.Options)
	m.shownAt = m.now()
	m.remaining = it.TimeLimitSec
	m.seq++
	return m.tick()
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	if m.idx+1 >= len(m.items) {
		return m.finish()
	}
	cmd := m.show(m.idx + 1)
	return m, cmd
}

func (m Model) finish() (tea.Model, tea.Cmd) {
	m.phase = phaseScoring
	m.seq++
	return m, tea.Batch(m.spinner.Tick, m.score())
}

func (m Model) tick() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.second, func(time.Time) tea.Msg {
		return tickMsg{Seq: seq}
	})
}

func (m Model) start() tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		return startedMsg{Out: engine.Start(ctx, UserAgent)}
	}
}

func (m Model) answer(selected int) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	in := assessment.AnswerInput{
		SessionID: m.sessionID,
		ItemID:    m.items[m.idx].ID,
		Selected:  selected,
		RtMs:      m.now().Sub(m.shownAt).Milliseconds(),
	}
	return func() tea.Msg {
		_, err := engine.Answer(ctx, in)
		return answeredMsg{Err: err}
	}
}

// score finishes the session, falling back to a result without insights
// when the generator is unavailable.
func (m Model) score() tea.Cmd {
	ctx, engine, id := m.ctx, m.engine, m.sessionID
	return func() tea.Msg {
		res, err := engine.Finish(ctx, id)
		if errors.Is(err, assessment.ErrGeneratorUnavailable) {
			res, err = engine.FinishLite(ctx, id)
			return finishedMsg{Result: res, Lite: true, Err: err}
		}
		return finishedMsg{Result: res, Err: err}
	}
}
