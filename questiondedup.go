package quantummeadow

import "strings"

// DedupResult describes a question dropped as a repeat of an earlier one
type DedupResult struct {
	Index       int
	DuplicateOf int
}

// DedupQuestions drops questions whose story repeats an earlier story,
// comparing case-insensitively with whitespace collapsed. Order is kept.
func DedupQuestions(questions []QuizQuestion) ([]QuizQuestion, []DedupResult) {
	seen := make(map[string]int, len(questions))
	unique := make([]QuizQuestion, 0, len(questions))
	var dropped []DedupResult

	for i, q := range questions {
		key := storyKey(q.QuestionStory)
		if first, ok := seen[key]; ok {
			dropped = append(dropped, DedupResult{Index: i, DuplicateOf: first})
			continue
		}
		seen[key] = i
		unique = append(unique, q)
	}
	return unique, dropped
}

func storyKey(story string) string {
	return strings.ToLower(strings.Join(strings.Fields(story), " "))
}
