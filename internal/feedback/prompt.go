package feedback

import (
	"fmt"
	"strings"

	"github.com/chaspy/toeic-assessment-poc/internal/skills"
)

const adviceSystemPrompt = `You are a friendly reading coach for adult learners preparing for the TOEIC Reading section. You explain weak points in plain language and suggest short, concrete practice.`

func buildAdviceUserMessage(catalog *skills.Catalog, in AdviceInput) string {
	var b strings.Builder

	if in.CEFR != "" {
		fmt.Fprintf(&b, "Estimated reading score: %d (CEFR %s)\n\n", in.ScaledReading, in.CEFR)
	}
	b.WriteString("Weakest skills from a 20-question reading check:\n")
	for i, c := range in.Weakest {
		meta := catalog.Lookup(c.Skill)
		fmt.Fprintf(&b, "\n%d. key: %s\n", i+1, c.Skill)
		fmt.Fprintf(&b, "   label: %s\n", meta.Label)
		fmt.Fprintf(&b, "   meaning: %s\n", meta.Meaning)
		fmt.Fprintf(&b, "   correct: %d of %d (%.0f%%)\n", c.Correct, c.Seen, c.Accuracy()*100)
		if len(c.Examples) > 0 {
			fmt.Fprintf(&b, "   missed questions: %s\n", joinInts(c.Examples))
		}
	}

	b.WriteString(`
Instructions:
Return one advice entry per skill above, in the same order, using the key exactly as given.
1. label: a short name the learner will recognize.
2. meaning: one sentence on what the skill is.
3. read: one concrete tip for spotting the answer in this kind of question.
4. practice: 2-4 small actions the learner can do this week.
Keep each field short. Plain text only.`)

	return b.String()
}

const explainSystemPrompt = `You are a TOEIC reading tutor. You explain in a few sentences why the correct option is right, pointing at the words in the sentence or passage that decide it.`

func buildExplainUserMessage(in ExplainInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question %d (%s):\n%s\n\nOptions:\n", in.Position, in.Item.Part, in.Item.Stem)
	for i, opt := range in.Item.Options {
		fmt.Fprintf(&b, "(%c) %s\n", 'A'+i, opt)
	}
	fmt.Fprintf(&b, "\nCorrect option: (%c)\n", 'A'+in.Item.Answer)
	if in.Item.HasOption(in.Selected) {
		fmt.Fprintf(&b, "Learner chose: (%c)\n", 'A'+in.Selected)
	}
	if len(in.Item.Skills) > 0 {
		fmt.Fprintf(&b, "Skills tested: %s\n", strings.Join(in.Item.Skills, ", "))
	}

	b.WriteString(`
Instructions:
Explain in 2-4 sentences why the correct option fits. If the learner chose differently, say briefly why their choice does not fit.`)

	return b.String()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
