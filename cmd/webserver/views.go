package main

import "quantummeadow"

// quizView is what the templates and the JSON API render for one session.
// Correct answers are only included once the question is answered.
type quizView struct {
	Phase    quantummeadow.Phase `json:"phase"`
	Error    string              `json:"error,omitempty"`
	Fallback bool                `json:"fallback,omitempty"`
	Progress *progressView       `json:"progress,omitempty"`
	Question *questionView       `json:"question,omitempty"`
	Result   *resultView         `json:"result,omitempty"`
}

type progressView struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Score   int     `json:"score"`
}

type questionView struct {
	Story       string       `json:"story"`
	Options     []optionView `json:"options"`
	Answered    bool         `json:"answered"`
	IsLast      bool         `json:"isLast"`
	Explanation string       `json:"explanation,omitempty"`
	Concept     string       `json:"concept,omitempty"`
}

type optionView struct {
	Index    int                      `json:"index"`
	Label    string                   `json:"label"`
	Text     string                   `json:"text"`
	Mark     quantummeadow.OptionMark `json:"mark"`
	Disabled bool                     `json:"disabled"`
}

type resultView struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Tier       string `json:"tier"`
	Message    string `json:"message"`
	Icon       string `json:"icon"`
}

// newQuizView renders a session state
func newQuizView(state quantummeadow.State) quizView {
	view := quizView{Phase: state.Phase()}

	switch s := state.(type) {
	case quantummeadow.StartState:
		view.Error = s.Err

	case quantummeadow.PlayingState:
		view.Fallback = s.Fallback
		view.Progress = &progressView{
			Current: s.Index + 1,
			Total:   len(s.Questions),
			Percent: quantummeadow.ProgressPercent(s.Index+1, len(s.Questions)),
			Score:   s.Score,
		}
		view.Question = newQuestionView(s)

	case quantummeadow.FinishedState:
		view.Fallback = s.Fallback
		pct := quantummeadow.Percentage(s.Score, s.Total)
		tier := quantummeadow.ResultTierFor(pct)
		view.Result = &resultView{
			Score:      s.Score,
			Total:      s.Total,
			Percentage: pct,
			Tier:       tier.Name,
			Message:    tier.Message,
			Icon:       tier.Icon,
		}
	}
	return view
}

func newQuestionView(s quantummeadow.PlayingState) *questionView {
	question := s.Current()
	answered := s.Answered()
	marks := quantummeadow.OptionMarks(question, s.Selected, answered)

	qv := &questionView{
		Story:    question.QuestionStory,
		Options:  make([]optionView, len(question.Options)),
		Answered: answered,
		IsLast:   s.IsLast(),
	}
	for i, opt := range question.Options {
		qv.Options[i] = optionView{
			Index:    i,
			Label:    quantummeadow.OptionLabel(i),
			Text:     opt.Text,
			Mark:     marks[i],
			Disabled: answered,
		}
	}
	if answered {
		qv.Explanation = question.Explanation
		qv.Concept = question.QuantumConcept
	}
	return qv
}
