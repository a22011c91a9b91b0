package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
)

// Run loads the quiz and feeds commands read from in to the controller until
// EOF, "q" or ctx cancellation. A failed load is reported through the UI and
// the loop keeps running so the user can restart.
func Run(ctx context.Context, ctrl *app.Controller, in io.Reader, ui *UI) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer ctrl.Close()

	_ = ctrl.Load(ctx)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if quit := dispatch(ctx, ctrl, ui, line); quit {
				return nil
			}
		}
	}
}

// dispatch runs one input line. Upper-case letters always pick an option, so
// options such as H or N stay reachable next to the single-letter commands.
func dispatch(ctx context.Context, ctrl *app.Controller, ui *UI, line string) bool {
	raw := strings.TrimSpace(line)
	if isOptionLetter(raw) {
		selectOption(ctrl, ui, raw)
		return false
	}
	cmd := strings.ToLower(raw)
	switch cmd {
	case "":
		return false
	case "q", "quit", "exit":
		return true
	case "n", "next":
		ctrl.Advance(ctx)
	case "h", "help":
		ctrl.UseHelp()
	case "r", "restart":
		_ = ctrl.Restart(ctx)
	default:
		selectOption(ctrl, ui, cmd)
	}
	return false
}

func selectOption(ctrl *app.Controller, ui *UI, cmd string) {
	q, ok := ctrl.CurrentQuestion()
	if !ok {
		return
	}
	choice, err := parseChoice(cmd, q)
	if err != nil {
		ui.ShowMessage(err.Error(), app.MessageError)
		return
	}
	ctrl.Select(choice)
}

func isOptionLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

var errUnknownCommand = errors.New("unknown command")

// parseChoice maps "2", "b" or "B" to the matching option text.
func parseChoice(cmd string, q domain.Question) (string, error) {
	cmd = strings.ToLower(cmd)
	idx := -1
	if n, err := strconv.Atoi(cmd); err == nil {
		idx = n - 1
	} else if len(cmd) == 1 && cmd[0] >= 'a' && cmd[0] <= 'z' {
		idx = int(cmd[0] - 'a')
	}
	if idx < 0 || idx >= len(q.Options) {
		return "", errUnknownCommand
	}
	return q.Options[idx], nil
}
