package quantummeadow

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes the transcript of one question fetch to its own file
type LLMLogger struct {
	file    *os.File
	mu      sync.Mutex
	fetchID string
}

// NewLLMLogger creates dir/<fetchID>.log and writes the fetch header
func NewLLMLogger(dir, fetchID, model string) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", fetchID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:    file,
		fetchID: fetchID,
	}

	logger.Logf("=== Question Fetch Log ===\n")
	logger.Logf("Fetch ID: %s\n", fetchID)
	logger.Logf("Model: %s\n", model)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("==========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.writef(format, args...)
}

func (ll *LLMLogger) writef(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs the prompt sent to the service
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs the raw reply text
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogDedupResult logs a question dropped as a duplicate
func (ll *LLMLogger) LogDedupResult(d DedupResult) {
	ll.Logf("Question %d: DUPLICATE of %d\n", d.Index+1, d.DuplicateOf+1)
}

// LogOutcome logs how the fetch ended
func (ll *LLMLogger) LogOutcome(res FetchResult) {
	if res.Fallback {
		ll.Logf("Outcome: fallback with %d questions - %v\n", len(res.Questions), res.Err)
		return
	}
	ll.Logf("Outcome: generated %d questions\n", len(res.Questions))
}

// Close writes the footer and closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.writef("=== Question Fetch Complete ===\n")
	ll.writef("Completed: %s\n", time.Now().Format(time.RFC3339))
	ll.writef("===============================\n")
	err := ll.file.Close()
	ll.file = nil
	return err
}
