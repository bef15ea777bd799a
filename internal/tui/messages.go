package tui

import (
	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
)

// startedMsg is sent when the engine has created the session.
type startedMsg struct {
	Out assessment.StartOutput
}

// answeredMsg is sent when an answer has been recorded.
type answeredMsg struct {
	Err error
}

// finishedMsg carries the scored result. Lite is set when insights were
// skipped because the generator failed.
type finishedMsg struct {
	Result assessment.Result
	Lite   bool
	Err    error
}

// tickMsg is sent every second while an item is on screen. Seq identifies
// the item display it belongs to so stale ticks are dropped.
type tickMsg struct {
	Seq int
}
