package quantummeadow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFallbackQuestions returns the questions played when the content
// service cannot produce a quiz.
func DefaultFallbackQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			QuestionStory: "A tiny field mouse named Pip finds a tall, solid blade of grass blocking his path to a tasty berry. Instead of going around, he sometimes just appears on the other side instantly, as if he walked through it. How does he do it?",
			Options: []QuizOption{
				{Text: "He's a ghost mouse.", IsCorrect: false},
				{Text: "He momentarily borrows a bit of energy to 'tunnel' through the barrier.", IsCorrect: true},
				{Text: "The wind blows him over the top very fast.", IsCorrect: false},
				{Text: "He eats the grass blade.", IsCorrect: false},
			},
			Explanation:    "Pip doesn't break the rules of the meadow, he just uses them in a strange way. By 'borrowing' energy for a split second, he has a small chance to appear on the other side. (This is like Quantum Tunneling).",
			QuantumConcept: "Quantum Tunneling",
		},
		{
			QuestionStory: "Two twin fireflies, Flicker and Flash, are born. They are magically linked. If Flicker flashes a green light in one corner of the meadow, you instantly know Flash, who is all the way on the other side, is also flashing green. How do they coordinate?",
			Options: []QuizOption{
				{Text: "They are sending secret signals.", IsCorrect: false},
				{Text: "It's just a coincidence.", IsCorrect: false},
				{Text: "Their fates are connected; knowing one's state instantly determines the other's.", IsCorrect: true},
				{Text: "They agreed on a pattern beforehand.", IsCorrect: false},
			},
			Explanation:    "Flicker and Flash are connected in a special way. The state of one is instantly linked to the other, no matter the distance. (This is like Quantum Entanglement).",
			QuantumConcept: "Entanglement",
		},
	}
}

// fallbackFile is the YAML layout of a fallback question file
type fallbackFile struct {
	Questions []QuizQuestion `yaml:"questions"`
}

// LoadFallbackFile reads fallback questions from a YAML file. An empty
// question list is allowed; it makes every failed fetch a load error.
func LoadFallbackFile(path string) ([]QuizQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback file: %w", err)
	}
	var file fallbackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fallback file: %w", err)
	}
	for i, q := range file.Questions {
		if err := CheckQuestion(q); err != nil {
			return nil, fmt.Errorf("fallback question %d: %w", i+1, err)
		}
	}
	return file.Questions, nil
}
