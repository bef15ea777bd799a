package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chaspy/toeic-assessment-poc/internal/ui/components"
	"github.com/chaspy/toeic-assessment-poc/internal/ui/layout"
	"github.com/chaspy/toeic-assessment-poc/internal/ui/theme"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current size.
func (m Model) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader(m.title(), m.status(), m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)
	contentWidth := m.width - 4

	var content string
	switch m.phase {
	case phaseStarting:
		content = m.spinner.View() + " Preparing your test..."
	case phaseItem:
		content = m.renderItem(contentWidth)
	case phaseConfirmQuit:
		content = renderQuitConfirm(m.answered, len(m.items))
	case phaseScoring:
		content = m.spinner.View() + " Scoring your answers..."
	case phaseResult:
		content = m.renderResult(contentWidth)
	case phaseError:
		content = theme.Incorrect.Render("Something went wrong") + "\n\n" +
			theme.Body.Render(m.err.Error())
	}

	content = lipgloss.NewStyle().Padding(1, 2).Render(content)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m Model) title() string {
	switch m.phase {
	case phaseItem, phaseConfirmQuit:
		return fmt.Sprintf("Question %d of %d", m.idx+1, len(m.items))
	case phaseResult:
		return "Your result"
	}
	return ""
}

func (m Model) status() string {
	if m.phase == phaseItem || m.phase == phaseConfirmQuit {
		return "⏱ " + components.Clock(m.remaining)
	}
	return ""
}

func (m Model) keyHints() []layout.KeyHint {
	switch m.phase {
	case phaseItem:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "Enter/A-D", Description: "Answer"},
			{Key: "Esc", Description: "Finish early"},
		}
	case phaseConfirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Finish now"},
			{Key: "N", Description: "Keep going"},
		}
	case phaseResult, phaseError:
		return []layout.KeyHint{{Key: "Q", Description: "Quit"}}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (m Model) renderItem(width int) string {
	it := m.items[m.idx]
	var b strings.Builder

	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Part %s", strings.TrimPrefix(string(it.Part), "R"))))
	b.WriteString("\n")
	b.WriteString(components.ProgressBar{
		Percent: float64(m.idx) / float64(len(m.items)),
		Suffix:  fmt.Sprintf("%d/%d", m.idx+1, len(m.items)),
		Width:   width,
	}.View())
	b.WriteString("\n")

	limit := max(it.TimeLimitSec, 1)
	b.WriteString(components.ProgressBar{
		Percent: float64(m.remaining) / float64(limit),
		Suffix:  components.Clock(m.remaining),
		Width:   width,
		Warn:    m.remaining <= 10,
	}.View())
	b.WriteString("\n\n")

	b.WriteString(m.choice.View(width))
	return b.String()
}

func renderQuitConfirm(answered, total int) string {
	return theme.Warning.Render("Finish the test now?") + "\n\n" +
		theme.Body.Render(fmt.Sprintf("You have answered %d of %d questions.", answered, total)) + "\n" +
		theme.Hint.Render("Unanswered questions count as incorrect.")
}

func (m Model) renderResult(width int) string {
	r := m.result
	var b strings.Builder

	b.WriteString(theme.Title.Render("Estimated Reading score"))
	b.WriteString("\n\n")
	b.WriteString(theme.Score.Render(fmt.Sprintf("%d", r.ScaledReading)))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("   range %d–%d   CEFR %s", r.ProvisionalCI[0], r.ProvisionalCI[1], r.CEFR)))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d of %d correct", r.RawCorrect, len(r.Responses))))
	if m.timedOut > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  (%d timed out)", m.timedOut)))
	}
	b.WriteString("\n\n")

	if m.lite {
		b.WriteString(theme.Hint.Render("Study advice is unavailable right now."))
		b.WriteString("\n\n")
	}
	for _, a := range r.Insights {
		b.WriteString(theme.Selected.Render(a.Label))
		if len(a.Examples) > 0 {
			b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  (questions %s)", joinInts(a.Examples))))
		}
		b.WriteString("\n")
		if a.Read != "" {
			b.WriteString(lipgloss.NewStyle().Width(width).Render(theme.Body.Render(a.Read)))
			b.WriteString("\n")
		}
		for _, p := range a.Practice {
			b.WriteString(theme.Body.Render("  • " + p))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(theme.Hint.Render(r.Disclaimer))
	return b.String()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
