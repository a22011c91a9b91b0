package http

import (
	"quiz-runner/internal/app"
)

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type enabledPayload struct {
	Enabled bool `json:"enabled"`
}

type markPayload struct {
	Option string         `json:"option"`
	Mark   app.OptionMark `json:"mark"`
}

type scorePayload struct {
	Score int `json:"score"`
}

type progressPayload struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type timerPayload struct {
	Remaining int  `json:"remaining"`
	Warning   bool `json:"warning"`
}

type messagePayload struct {
	Text  string          `json:"text"`
	Kind  app.MessageKind `json:"kind"`
	TTLMs int64           `json:"ttlMs"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// socketUI turns controller calls into outbound events for a single connection.
// Events are dropped once the connection writer has stopped.
type socketUI struct {
	send   chan<- outboundMessage[any]
	closed <-chan struct{}
}

func newSocketUI(send chan<- outboundMessage[any], closed <-chan struct{}) *socketUI {
	return &socketUI{send: send, closed: closed}
}

func (u *socketUI) emit(typ string, payload any) {
	select {
	case u.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-u.closed:
	}
}

func (u *socketUI) ShowLoading() { u.emit("loading", struct{}{}) }

func (u *socketUI) ShowUnavailable(message string) {
	u.emit("unavailable", errorPayload{Message: message})
}

func (u *socketUI) ShowQuestion(view app.QuestionView) { u.emit("question", view) }

func (u *socketUI) SetOptionsEnabled(enabled bool) {
	u.emit("options", enabledPayload{Enabled: enabled})
}

func (u *socketUI) MarkOption(option string, mark app.OptionMark) {
	u.emit("mark", markPayload{Option: option, Mark: mark})
}

func (u *socketUI) SetNextEnabled(enabled bool) { u.emit("next", enabledPayload{Enabled: enabled}) }

func (u *socketUI) SetHelpEnabled(enabled bool) { u.emit("help", enabledPayload{Enabled: enabled}) }

func (u *socketUI) SetScore(score int) { u.emit("score", scorePayload{Score: score}) }

func (u *socketUI) SetBestScore(best int) { u.emit("best", scorePayload{Score: best}) }

func (u *socketUI) SetProgress(current, total int) {
	percent := 0
	if total > 0 {
		percent = current * 100 / total
	}
	u.emit("progress", progressPayload{Current: current, Total: total, Percent: percent})
}

func (u *socketUI) SetTimer(remaining int, warning bool) {
	u.emit("timer", timerPayload{Remaining: remaining, Warning: warning})
}

func (u *socketUI) ShowMessage(text string, kind app.MessageKind) {
	u.emit("message", messagePayload{Text: text, Kind: kind, TTLMs: app.MessageTTL.Milliseconds()})
}
