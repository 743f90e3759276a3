package quantummeadow

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the part of the go-openai client the question maker uses
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// QuestionMaker asks the content service for a batch of meadow questions
type QuestionMaker struct {
	client       ChatCompleter
	model        string
	temperature  float32
	numQuestions int
}

// NewQuestionMaker creates a question maker on top of a chat completion client
func NewQuestionMaker(client ChatCompleter, model string, temperature float32, numQuestions int) *QuestionMaker {
	return &QuestionMaker{
		client:       client,
		model:        model,
		temperature:  temperature,
		numQuestions: numQuestions,
	}
}

// GenerateQuestions requests one quiz from the service and returns the
// parsed, validated and de-duplicated questions.
func (qm *QuestionMaker) GenerateQuestions(ctx context.Context, logger *LLMLogger) ([]QuizQuestion, error) {
	VerboseLog("Requesting %d questions from model %s", qm.numQuestions, qm.model)

	prompt := qm.buildPrompt()
	if logger != nil {
		logger.LogLLMRequest("QuestionMaker", prompt)
	}

	resp, err := qm.client.CreateChatCompletion(ctx, qm.buildRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrService, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrInvalidFormat)
	}

	text := resp.Choices[0].Message.Content
	if logger != nil {
		logger.LogLLMResponse("QuestionMaker", text)
	}

	questions, err := parseQuestions(text)
	if err != nil {
		return nil, err
	}

	questions, dropped := DedupQuestions(questions)
	for _, d := range dropped {
		VerboseLog("Dropped question %d: duplicate of question %d", d.Index+1, d.DuplicateOf+1)
		if logger != nil {
			logger.LogDedupResult(d)
		}
	}

	VerboseLog("Generated %d questions", len(questions))
	return questions, nil
}

func (qm *QuestionMaker) buildRequest(prompt string) openai.ChatCompletionRequest {
	// go-openai omits a zero temperature, which the service reads as its default
	temperature := qm.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	return openai.ChatCompletionRequest{
		Model: qm.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        "quiz_questions",
				Description: "Animal-themed multiple-choice questions about quantum computing",
				Schema:      json.RawMessage(questionsSchemaJSON),
			},
		},
	}
}

func (qm *QuestionMaker) buildPrompt() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create a %d-question multiple-choice quiz about quantum computing concepts.\n", qm.numQuestions))
	sb.WriteString("IMPORTANT: Frame every question as a short, charming story or scenario involving animals in a meadow.\n")
	sb.WriteString("DO NOT use direct quantum terminology like 'qubit', 'superposition', 'entanglement', 'quantum tunneling', or 'observer effect' in the questions or options.\n")
	sb.WriteString("For each question, provide:\n")
	sb.WriteString("1. 'questionStory': The animal-based story or scenario.\n")
	sb.WriteString("2. 'options': An array of 4 possible answers. One must be correct. Each option should have 'text' and 'isCorrect' (boolean).\n")
	sb.WriteString("3. 'explanation': A brief explanation of the correct answer, which first explains the animal story's logic and then reveals the corresponding quantum computing concept in parentheses.\n")
	sb.WriteString("4. 'quantumConcept': The name of the quantum concept the question is about (e.g., \"Superposition\", \"Entanglement\").\n\n")
	sb.WriteString("Example for one question:\n")
	sb.WriteString("A magical firefly named Flicker can be in multiple flowers at once. If you try to catch it, it instantly appears in just one flower.\n")
	sb.WriteString("The quantum concept is Superposition & Measurement.\n\n")
	sb.WriteString(fmt.Sprintf("Generate %d unique questions following this format.\n", qm.numQuestions))

	return sb.String()
}

// parseQuestions turns the service reply into questions. The reply must be a
// non-empty JSON array matching the questions schema.
func parseQuestions(text string) ([]QuizQuestion, error) {
	data := []byte(stripCodeFence(strings.TrimSpace(text)))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidFormat)
	}
	if err := validateQuestionsJSON(data); err != nil {
		return nil, err
	}

	var questions []QuizQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := CheckQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		return ""
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
