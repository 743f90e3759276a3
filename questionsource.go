package quantummeadow

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// Defaults for talking to Gemini through its OpenAI-compatible endpoint
const (
	DefaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel        = "gemini-2.5-flash"
	DefaultTemperature  = 0.8
	DefaultNumQuestions = 5
)

// SourceConfig is everything the question source needs. The credential is
// passed in here; the source never reads the environment.
type SourceConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	NumQuestions int
	// Fallback is played whenever the service cannot produce a quiz.
	// An empty list turns such failures into a load error.
	Fallback []QuizQuestion
	// Timeout bounds one service call; zero means no timeout.
	Timeout time.Duration
	// LogDir receives one transcript file per fetch; empty disables it.
	LogDir     string
	HTTPClient *http.Client
}

// DefaultSourceConfig returns a config with the Gemini defaults and the
// built-in fallback questions.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		BaseURL:      DefaultBaseURL,
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		NumQuestions: DefaultNumQuestions,
		Fallback:     DefaultFallbackQuestions(),
	}
}

// Fetcher produces the question list for a new quiz
type Fetcher interface {
	FetchQuestions(ctx context.Context) FetchResult
}

// GenerationRecorder stores the outcome of each fetch
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, rec GenerationRecord) error
}

// QuestionSource fetches questions from the content service and substitutes
// the fallback list on any failure.
type QuestionSource struct {
	cfg      SourceConfig
	maker    *QuestionMaker
	recorder GenerationRecorder
}

// NewQuestionSource creates a source backed by a go-openai client
func NewQuestionSource(cfg SourceConfig) *QuestionSource {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}
	return NewQuestionSourceWithClient(cfg, openai.NewClientWithConfig(clientConfig))
}

// NewQuestionSourceWithClient creates a source on top of any chat completion client
func NewQuestionSourceWithClient(cfg SourceConfig, client ChatCompleter) *QuestionSource {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.NumQuestions <= 0 {
		cfg.NumQuestions = DefaultNumQuestions
	}
	return &QuestionSource{
		cfg:   cfg,
		maker: NewQuestionMaker(client, cfg.Model, cfg.Temperature, cfg.NumQuestions),
	}
}

// SetRecorder attaches a generation history recorder
func (s *QuestionSource) SetRecorder(recorder GenerationRecorder) {
	s.recorder = recorder
}

// FetchQuestions returns generated questions, or the fallback list when the
// credential is missing, the service fails or the reply is malformed.
// It never returns an error; FetchResult.Err keeps the cause.
func (s *QuestionSource) FetchQuestions(ctx context.Context) FetchResult {
	result := FetchResult{ID: uuid.NewString()}
	startedAt := time.Now()

	var logger *LLMLogger
	if s.cfg.LogDir != "" {
		l, err := NewLLMLogger(s.cfg.LogDir, result.ID, s.cfg.Model)
		if err != nil {
			log.Printf("Failed to create LLM logger for fetch %s: %v", result.ID, err)
		} else {
			logger = l
			defer logger.Close()
		}
	}

	questions, err := s.generate(ctx, logger)
	if err != nil {
		log.Printf("Error fetching quiz questions (fetch %s): %v", result.ID, err)
		result.Err = err
		result.Fallback = true
		result.Questions = append([]QuizQuestion(nil), s.cfg.Fallback...)
	} else {
		result.Questions = questions
	}

	if logger != nil {
		logger.LogOutcome(result)
	}
	s.record(ctx, result, startedAt)
	return result
}

func (s *QuestionSource) generate(ctx context.Context, logger *LLMLogger) ([]QuizQuestion, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return s.maker.GenerateQuestions(ctx, logger)
}

func (s *QuestionSource) record(ctx context.Context, result FetchResult, startedAt time.Time) {
	if s.recorder == nil {
		return
	}
	rec := GenerationRecord{
		ID:            result.ID,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
		Model:         s.cfg.Model,
		Outcome:       OutcomeGenerated,
		QuestionCount: len(result.Questions),
	}
	if result.Fallback {
		rec.Outcome = OutcomeFallback
		rec.Cause = failureCause(result.Err)
		rec.Error = result.Err.Error()
	}
	// The fetch context may already be cancelled; history is best effort.
	if err := s.recorder.RecordGeneration(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("Failed to record generation %s: %v", result.ID, err)
	}
}

// failureCause maps a fetch error to its taxonomy label
func failureCause(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return CauseMissingCredential
	case errors.Is(err, ErrInvalidFormat):
		return CauseInvalidFormat
	default:
		return CauseService
	}
}
