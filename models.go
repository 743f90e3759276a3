package quantummeadow

import "errors"

// QuizOption is one answer choice of a question
type QuizOption struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// QuizQuestion is a single animal-story question with four options
type QuizQuestion struct {
	QuestionStory  string       `json:"questionStory" yaml:"questionStory"`
	Options        []QuizOption `json:"options" yaml:"options"`
	Explanation    string       `json:"explanation" yaml:"explanation"`
	QuantumConcept string       `json:"quantumConcept" yaml:"quantumConcept"`
}

// OptionsPerQuestion is the number of options every question carries
const OptionsPerQuestion = 4

// CorrectIndex returns the index of the correct option, or -1 if there is none
func (q QuizQuestion) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}

// Errors produced while fetching questions. They never leave the question
// source; FetchResult.Err carries them for logging.
var (
	ErrMissingCredential = errors.New("api key not configured")
	ErrService           = errors.New("content service request failed")
	ErrInvalidFormat     = errors.New("invalid quiz data format received from API")
)

// ErrNoQuestions is returned by Controller.Load when even the fallback list is empty
var ErrNoQuestions = errors.New("no questions were returned from the service")

// LoadFailedMessage is the only error text shown to players
const LoadFailedMessage = "Failed to load the quiz. Please try again later."

// FetchResult is the outcome of one question fetch. Questions is the list to
// play: either the generated questions or the fallback list.
type FetchResult struct {
	ID        string
	Questions []QuizQuestion
	Fallback  bool
	Err       error
}
