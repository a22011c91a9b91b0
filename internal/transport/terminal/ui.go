package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"quiz-runner/internal/app"
)

// UI renders controller updates as plain text lines.
type UI struct {
	mu  sync.Mutex
	out io.Writer
}

func NewUI(out io.Writer) *UI {
	return &UI{out: out}
}

func (u *UI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UI) ShowLoading() {
	u.printf("Loading questions...\n")
}

func (u *UI) ShowUnavailable(message string) {
	u.printf("\n%s\n", message)
}

func (u *UI) ShowQuestion(view app.QuestionView) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nQ%d/%d: %s\n\n", view.Number, view.Total, view.Prompt)
	for i, opt := range view.Options {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, opt)
	}
	b.WriteString("\n[1-9|A-Z] answer  [h]elp  [n]ext  [r]estart  [q]uit\n")
	u.printf("%s", b.String())
}

// SetOptionsEnabled has nothing to draw; the controller rejects late answers itself.
func (u *UI) SetOptionsEnabled(bool) {}

func (u *UI) MarkOption(option string, mark app.OptionMark) {
	switch mark {
	case app.MarkCorrect:
		u.printf("  [correct] %s\n", option)
	case app.MarkIncorrect:
		u.printf("  [wrong]   %s\n", option)
	case app.MarkHint:
		u.printf("  [hint]    %s\n", option)
	}
}

func (u *UI) SetNextEnabled(enabled bool) {
	if enabled {
		u.printf("Press n for the next question.\n")
	}
}

func (u *UI) SetHelpEnabled(bool) {}

func (u *UI) SetScore(score int) {
	u.printf("Score: %d\n", score)
}

func (u *UI) SetBestScore(best int) {
	u.printf("Best score: %d\n", best)
}

func (u *UI) SetProgress(current, total int) {
	if total <= 0 {
		return
	}
	const width = 20
	filled := current * width / total
	u.printf("[%s%s] %d%%\n", strings.Repeat("#", filled), strings.Repeat(".", width-filled), current*100/total)
}

// SetTimer prints only at multiples of five and during the warning window.
func (u *UI) SetTimer(remaining int, warning bool) {
	if warning {
		u.printf("  ! %ds left\n", remaining)
		return
	}
	if remaining%5 == 0 {
		u.printf("  %ds left\n", remaining)
	}
}

func (u *UI) ShowMessage(text string, kind app.MessageKind) {
	switch kind {
	case app.MessageError:
		u.printf(">> %s\n", text)
	case app.MessageSuccess:
		u.printf("** %s\n", text)
	default:
		u.printf("-- %s\n", text)
	}
}
