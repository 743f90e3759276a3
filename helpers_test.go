package quantummeadow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// sampleQuestions builds n valid questions; question i has its correct
// option at index i%4.
func sampleQuestions(n int) []QuizQuestion {
	questions := make([]QuizQuestion, n)
	for i := range questions {
		options := make([]QuizOption, OptionsPerQuestion)
		for j := range options {
			options[j] = QuizOption{Text: fmt.Sprintf("Option %d.%d", i+1, j+1), IsCorrect: j == i%OptionsPerQuestion}
		}
		questions[i] = QuizQuestion{
			QuestionStory:  fmt.Sprintf("Story %d: a rabbit hops through the meadow.", i+1),
			Options:        options,
			Explanation:    fmt.Sprintf("Explanation %d", i+1),
			QuantumConcept: fmt.Sprintf("Concept %d", i+1),
		}
	}
	return questions
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// fakeCompleter returns a canned reply or error
type fakeCompleter struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
	}, nil
}

// fakeFetcher returns a fixed result and counts calls
type fakeFetcher struct {
	mu     sync.Mutex
	result FetchResult
	calls  int
	// block, when set, is waited on before returning
	block chan struct{}
}

func (f *fakeFetcher) FetchQuestions(ctx context.Context) FetchResult {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingRecorder collects generation records in memory
type recordingRecorder struct {
	mu      sync.Mutex
	records []GenerationRecord
}

func (r *recordingRecorder) RecordGeneration(_ context.Context, rec GenerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}
