package app

import (
	"context"
	"time"
)

// QuestionSource returns the raw JSON question set (a static resource, a table row, a cache).
type QuestionSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// BestScoreStore persists the single best-score value across runs.
// Load returns 0 when nothing has been stored yet.
type BestScoreStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, score int) error
}

// MessageTTL is how long adapters keep a transient message on screen.
const MessageTTL = 2500 * time.Millisecond

// MessageKind classifies transient messages for styling.
type MessageKind string

const (
	MessageInfo    MessageKind = "info"
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// OptionMark is the visual state applied to a single option control.
type OptionMark string

const (
	MarkCorrect   OptionMark = "correct"
	MarkIncorrect OptionMark = "incorrect"
	MarkHint      OptionMark = "hint"
)

// QuestionView is what the UI needs to render the active question.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Number  int      `json:"number"`
	Total   int      `json:"total"`
}

// UI is the presentation port. The controller calls it while holding its lock,
// so implementations must not call back into the controller.
type UI interface {
	ShowLoading()
	ShowUnavailable(message string)
	// ShowQuestion replaces the question text and option list; options start enabled.
	ShowQuestion(view QuestionView)
	SetOptionsEnabled(enabled bool)
	MarkOption(option string, mark OptionMark)
	SetNextEnabled(enabled bool)
	SetHelpEnabled(enabled bool)
	SetScore(score int)
	SetBestScore(best int)
	SetProgress(current, total int)
	SetTimer(remaining int, warning bool)
	ShowMessage(text string, kind MessageKind)
}

// Fixed user-facing strings.
const (
	MsgUnavailable    = "Unable to load questions."
	MsgLoadError      = "Load error"
	MsgCorrect        = "Correct answer!"
	MsgWrong          = "Wrong answer"
	MsgTimeUp         = "Time's up!"
	MsgSelectFirst    = "Select an answer before continuing"
	MsgHelp           = "The correct answer is highlighted"
	MsgFinishedFormat = "Quiz finished! Final score: %d"
	MsgNewRecord      = "New record!"
)
