package quantummeadow

import "math"

// ProgressPercent is the fill of the progress bar, 0 when total is not positive
func ProgressPercent(current, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(current) / float64(total) * 100
}

// OptionMark is how an option button is drawn
type OptionMark string

const (
	MarkIdle      OptionMark = "idle"
	MarkTentative OptionMark = "tentative"
	MarkCorrect   OptionMark = "correct"
	MarkWrong     OptionMark = "wrong"
	MarkDimmed    OptionMark = "dimmed"
)

// OptionMarks returns the mark of every option of q. Before an answer is
// recorded only the selected option stands out; afterwards the correct
// option is marked, a wrong selection is marked distinctly and the other
// distractors are dimmed.
func OptionMarks(q QuizQuestion, selected *int, answered bool) []OptionMark {
	marks := make([]OptionMark, len(q.Options))
	for i, opt := range q.Options {
		isSelected := selected != nil && *selected == i
		switch {
		case !answered && isSelected:
			marks[i] = MarkTentative
		case !answered:
			marks[i] = MarkIdle
		case opt.IsCorrect:
			marks[i] = MarkCorrect
		case isSelected:
			marks[i] = MarkWrong
		default:
			marks[i] = MarkDimmed
		}
	}
	return marks
}

// OptionLabel returns the letter shown before option i
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// Percentage is round(score / total * 100), 0 when total is not positive
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// ResultTier is the canned message shown on the results screen
type ResultTier struct {
	Name    string
	Message string
	Icon    string
}

var (
	TierPerfect   = ResultTier{Name: "perfect", Message: "Perfect Score! You're a true quantum whisperer!", Icon: "crown"}
	TierExcellent = ResultTier{Name: "excellent", Message: "Excellent! You have a great intuition for the meadow's mysteries.", Icon: "star"}
	TierGood      = ResultTier{Name: "good", Message: "Good job! The quantum world is tricky, but you're getting it.", Icon: "seedling"}
	TierStart     = ResultTier{Name: "start", Message: "A good start! The meadow has many more secrets to reveal.", Icon: "leaf"}
)

// ResultTierFor picks the message for a percentage: 100, >=75, >=50, else
func ResultTierFor(percentage int) ResultTier {
	switch {
	case percentage == 100:
		return TierPerfect
	case percentage >= 75:
		return TierExcellent
	case percentage >= 50:
		return TierGood
	default:
		return TierStart
	}
}
