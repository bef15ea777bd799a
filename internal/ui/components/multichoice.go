package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chaspy/toeic-assessment-poc/internal/ui/theme"
)

// MultiChoice is an option selector for one item. It never reveals the key:
// the candidate only learns correctness from the result screen.
type MultiChoice struct {
	Stem      string
	Options   []string
	Cursor    int
	Submitted bool
	Chosen    int
}

// NewMultiChoice creates a selector with the cursor on the first option.
func NewMultiChoice(stem string, options []string) MultiChoice {
	return MultiChoice{
		Stem:    stem,
		Options: options,
		Chosen:  -1,
	}
}

// Update handles cursor movement, digit shortcuts and enter.
func (m MultiChoice) Update(msg tea.Msg) MultiChoice {
	if m.Submitted {
		return m
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter":
		m.Submitted = true
		m.Chosen = m.Cursor
	default:
		if i, ok := optionIndex(key); ok && i < len(m.Options) {
			m.Cursor = i
			m.Submitted = true
			m.Chosen = i
		}
	}
	return m
}

// optionIndex maps "1".."9" and "a".."i" to a zero-based option index.
func optionIndex(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	switch c := key[0]; {
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c >= 'a' && c <= 'i':
		return int(c - 'a'), true
	}
	return 0, false
}

// OptionLabel returns the letter shown next to option i.
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// View renders the stem and options wrapped to width.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	stem := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if width > 0 {
		stem = stem.Width(width)
	}
	b.WriteString(stem.Render(m.Stem))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		style := theme.Unselected
		if i == m.Cursor {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s)  %s", prefix, OptionLabel(i), opt)))
		b.WriteString("\n")
	}
	return b.String()
}
