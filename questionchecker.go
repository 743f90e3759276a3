package quantummeadow

import (
	"fmt"
	"strings"
)

// CheckQuestion validates the structure of a single question: a story, an
// explanation, a concept label and exactly four non-empty options with
// exactly one marked correct.
func CheckQuestion(q QuizQuestion) error {
	if strings.TrimSpace(q.QuestionStory) == "" {
		return fmt.Errorf("%w: question story is empty", ErrInvalidFormat)
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("%w: expected %d options, got %d", ErrInvalidFormat, OptionsPerQuestion, len(q.Options))
	}
	correct := 0
	for i, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("%w: option %c is empty", ErrInvalidFormat, 'A'+i)
		}
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("%w: expected exactly one correct option, got %d", ErrInvalidFormat, correct)
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fmt.Errorf("%w: explanation is empty", ErrInvalidFormat)
	}
	if strings.TrimSpace(q.QuantumConcept) == "" {
		return fmt.Errorf("%w: quantum concept is empty", ErrInvalidFormat)
	}
	return nil
}

// CheckQuestions validates every question of a generated set. One bad
// question rejects the whole set so the player never sees a broken quiz.
func CheckQuestions(questions []QuizQuestion) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidFormat)
	}
	for i, q := range questions {
		if err := CheckQuestion(q); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}
