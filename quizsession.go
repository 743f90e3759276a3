package quantummeadow

import (
	"context"
	"sync"
)

// Phase names a quiz state
type Phase string

const (
	PhaseStart    Phase = "start"
	PhaseLoading  Phase = "loading"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// State is one of StartState, LoadingState, PlayingState or FinishedState.
// Each case carries only the data that is valid in that phase.
type State interface {
	Phase() Phase
}

// StartState is the title screen. Err holds the message of a failed load.
type StartState struct {
	Err string
}

// LoadingState waits for the question source
type LoadingState struct{}

// PlayingState shows Questions[Index]. Selected is the recorded answer for
// the current question; the question is answered iff it is set.
type PlayingState struct {
	Questions []QuizQuestion
	Index     int
	Score     int
	Selected  *int
	Fallback  bool
}

// FinishedState is the results screen
type FinishedState struct {
	Score    int
	Total    int
	Fallback bool
}

func (StartState) Phase() Phase    { return PhaseStart }
func (LoadingState) Phase() Phase  { return PhaseLoading }
func (PlayingState) Phase() Phase  { return PhasePlaying }
func (FinishedState) Phase() Phase { return PhaseFinished }

// Current returns the question being shown
func (p PlayingState) Current() QuizQuestion {
	return p.Questions[p.Index]
}

// Answered reports whether an answer is recorded for the current question
func (p PlayingState) Answered() bool {
	return p.Selected != nil
}

// IsLast reports whether the current question is the last one
func (p PlayingState) IsLast() bool {
	return p.Index == len(p.Questions)-1
}

// Controller owns one quiz session. It is the only writer of the session
// state and is safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	fetcher Fetcher
	state   State
	loadGen uint64
}

// NewController creates a controller on the start screen
func NewController(fetcher Fetcher) *Controller {
	return &Controller{
		fetcher: fetcher,
		state:   StartState{},
	}
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.state)
}

// Begin moves from the start or results screen to loading, discarding all
// progress. The caller must then run Load. It returns false when the quiz
// is already loading or being played.
func (c *Controller) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.(type) {
	case StartState, FinishedState:
	default:
		return false
	}
	c.loadGen++
	c.state = LoadingState{}
	VerboseLog("Session entering loading (generation %d)", c.loadGen)
	return true
}

// Restart plays again from the results screen. It behaves exactly like Begin.
func (c *Controller) Restart() bool {
	return c.Begin()
}

// Load fetches questions for the pending Begin and applies the result.
// An empty question list returns the session to the start screen with
// LoadFailedMessage and ErrNoQuestions. Load is a no-op when the session
// is not loading.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if _, ok := c.state.(LoadingState); !ok {
		c.mu.Unlock()
		return nil
	}
	gen := c.loadGen
	c.mu.Unlock()

	result := c.fetcher.FetchQuestions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.(LoadingState); !ok || c.loadGen != gen {
		VerboseLog("Discarding stale fetch %s", result.ID)
		return nil
	}
	if len(result.Questions) == 0 {
		c.state = StartState{Err: LoadFailedMessage}
		return ErrNoQuestions
	}
	c.state = PlayingState{
		Questions: result.Questions,
		Fallback:  result.Fallback,
	}
	VerboseLog("Session playing %d questions (fallback=%t)", len(result.Questions), result.Fallback)
	return nil
}

// Select records the answer to the current question and scores it. It is a
// no-op once the question is answered or outside the playing phase.
func (c *Controller) Select(option int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	playing, ok := c.state.(PlayingState)
	if !ok || playing.Answered() {
		return false
	}
	question := playing.Current()
	if option < 0 || option >= len(question.Options) {
		return false
	}
	selected := option
	playing.Selected = &selected
	if option == question.CorrectIndex() {
		playing.Score++
	}
	c.state = playing
	return true
}

// Advance moves past an answered question: to the next one, or to the
// results screen after the last. Unanswered questions cannot be skipped.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	playing, ok := c.state.(PlayingState)
	if !ok || !playing.Answered() {
		return false
	}
	if playing.IsLast() {
		c.state = FinishedState{
			Score:    playing.Score,
			Total:    len(playing.Questions),
			Fallback: playing.Fallback,
		}
		return true
	}
	playing.Index++
	playing.Selected = nil
	c.state = playing
	return true
}

// snapshot copies the mutable parts of a state so callers cannot alias it
func snapshot(s State) State {
	playing, ok := s.(PlayingState)
	if !ok {
		return s
	}
	if playing.Selected != nil {
		selected := *playing.Selected
		playing.Selected = &selected
	}
	return playing
}
