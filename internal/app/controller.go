package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"quiz-runner/internal/domain"
)

const (
	// DefaultTimeLimit is the per-question countdown in seconds.
	DefaultTimeLimit = 20
	warningThreshold = 5
	tickInterval     = time.Second
)

// State is the controller's position in the quiz lifecycle.
type State int

const (
	StateLoading State = iota
	StateReady
	StateAnswered
	StateFinished
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateAnswered:
		return "answered"
	case StateFinished:
		return "finished"
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the mutable state of one quiz run. It is owned by a single Controller.
type Session struct {
	Questions []domain.Question
	Index     int
	Score     int
	Answered  bool
	HelpUsed  bool
	Remaining int
}

func (s *Session) active() (domain.Question, bool) {
	if s == nil || s.Index < 0 || s.Index >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State     State
	Index     int
	Total     int
	Score     int
	Remaining int
	Answered  bool
	HelpUsed  bool
}

type countdown struct {
	id   uint64
	stop func()
}

// Controller drives a single quiz run: load, shuffle, per-question countdown,
// scoring, one help reveal per run and best-score persistence.
// Every transition, timer ticks included, runs under mu.
type Controller struct {
	source    QuestionSource
	best      BestScoreStore
	ui        UI
	clock     Clock
	rnd       *rand.Rand
	log       zerolog.Logger
	timeLimit int

	mu       sync.Mutex
	state    State
	session  *Session
	timer    *countdown
	timerSeq uint64
	loadSeq  uint64
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock replaces the ticker used for the countdown.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithRand makes shuffling deterministic.
func WithRand(rnd *rand.Rand) Option {
	return func(c *Controller) { c.rnd = rnd }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithTimeLimit sets the countdown length in seconds; non-positive values keep the default.
func WithTimeLimit(seconds int) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.timeLimit = seconds
		}
	}
}

func NewController(source QuestionSource, best BestScoreStore, ui UI, opts ...Option) *Controller {
	c := &Controller{
		source:    source,
		best:      best,
		ui:        ui,
		clock:     RealClock{},
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       zerolog.Nop(),
		timeLimit: DefaultTimeLimit,
		state:     StateLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "controller").Logger()
	return c
}

// Load fetches, validates and shuffles the question set, then renders the first question.
// On failure the controller becomes unavailable until the next Load or Restart.
// A load superseded by a later one is discarded when it completes.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.stopTimerLocked()
	c.state = StateLoading
	c.session = nil
	c.ui.ShowLoading()
	c.ui.SetNextEnabled(false)
	c.ui.SetHelpEnabled(false)
	c.mu.Unlock()

	questions, err := c.fetch(ctx)
	best := 0
	if err == nil {
		best, _ = c.loadBest(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		c.log.Debug().Uint64("load", seq).Msg("discarding superseded load")
		return nil
	}
	if err != nil {
		c.log.Error().Err(err).Msg("question set unavailable")
		c.state = StateUnavailable
		c.ui.ShowUnavailable(MsgUnavailable)
		c.ui.SetNextEnabled(false)
		c.ui.SetHelpEnabled(false)
		c.ui.ShowMessage(MsgLoadError, MessageError)
		return err
	}

	c.session = &Session{Questions: Shuffle(questions, c.rnd)}
	c.ui.SetScore(0)
	c.ui.SetBestScore(best)
	c.ui.SetHelpEnabled(true)
	c.log.Info().Int("questions", len(questions)).Msg("question set loaded")
	c.renderLocked(ctx)
	return nil
}

// Restart abandons the current run and loads a fresh, reshuffled question set.
func (c *Controller) Restart(ctx context.Context) error {
	c.log.Debug().Msg("restart requested")
	return c.Load(ctx)
}

// Select answers the active question. It is a no-op once the question has been
// answered or timed out, and for choices that are not among its options.
func (c *Controller) Select(choice string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return
	}
	s := c.session
	q, ok := s.active()
	if !ok || s.Answered || !q.HasOption(choice) {
		return
	}

	s.Answered = true
	c.state = StateAnswered
	c.stopTimerLocked()
	c.ui.SetOptionsEnabled(false)
	c.ui.SetHelpEnabled(false)

	if choice == q.Answer {
		s.Score++
		c.ui.MarkOption(choice, MarkCorrect)
		c.ui.SetScore(s.Score)
		c.ui.ShowMessage(MsgCorrect, MessageSuccess)
	} else {
		c.ui.MarkOption(choice, MarkIncorrect)
		c.ui.MarkOption(q.Answer, MarkCorrect)
		c.ui.ShowMessage(MsgWrong, MessageError)
	}
	c.ui.SetNextEnabled(true)
}

// Advance moves to the next question, or finishes the run after the last one.
func (c *Controller) Advance(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateAnswered:
	case StateReady:
		c.ui.ShowMessage(MsgSelectFirst, MessageError)
		return
	default:
		return
	}

	c.session.Index++
	c.renderLocked(ctx)
}

// UseHelp highlights the correct option of the active question, once per run.
func (c *Controller) UseHelp() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return
	}
	s := c.session
	q, ok := s.active()
	if !ok || s.HelpUsed || s.Answered {
		return
	}

	s.HelpUsed = true
	c.ui.MarkOption(q.Answer, MarkHint)
	c.ui.ShowMessage(MsgHelp, MessageInfo)
	c.ui.SetHelpEnabled(false)
}

// Close stops the countdown. The controller can still be reused through Restart.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

// CurrentQuestion returns a copy of the question on screen, if any.
func (c *Controller) CurrentQuestion() (domain.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady && c.state != StateAnswered {
		return domain.Question{}, false
	}
	q, ok := c.session.active()
	if !ok {
		return domain.Question{}, false
	}
	return q.Clone(), true
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{State: c.state}
	if s := c.session; s != nil {
		snap.Index = s.Index
		snap.Total = len(s.Questions)
		snap.Score = s.Score
		snap.Remaining = s.Remaining
		snap.Answered = s.Answered
		snap.HelpUsed = s.HelpUsed
	}
	return snap
}

func (c *Controller) renderLocked(ctx context.Context) {
	s := c.session
	total := len(s.Questions)
	if s.Index >= total {
		c.finishLocked(ctx)
		return
	}

	q := s.Questions[s.Index].Clone()
	c.ui.ShowQuestion(QuestionView{
		Prompt:  q.Prompt,
		Options: q.Options,
		Number:  s.Index + 1,
		Total:   total,
	})
	s.Answered = false
	c.state = StateReady
	c.ui.SetNextEnabled(false)
	if !s.HelpUsed {
		c.ui.SetHelpEnabled(true)
	}
	c.ui.SetProgress(s.Index, total)
	c.startTimerLocked()
}

func (c *Controller) finishLocked(ctx context.Context) {
	c.stopTimerLocked()
	s := c.session
	c.state = StateFinished
	total := len(s.Questions)
	c.ui.SetProgress(total, total)
	c.ui.ShowMessage(fmt.Sprintf(MsgFinishedFormat, s.Score), MessageInfo)

	best, ok := c.loadBest(ctx)
	if ok && s.Score > best {
		if err := c.best.Save(ctx, s.Score); err != nil {
			c.log.Warn().Err(err).Int("score", s.Score).Msg("could not persist best score")
		}
		c.ui.SetBestScore(s.Score)
		c.ui.ShowMessage(MsgNewRecord, MessageSuccess)
	}
	c.ui.SetNextEnabled(false)
	c.ui.SetHelpEnabled(false)
	c.log.Info().Int("score", s.Score).Int("total", total).Msg("quiz finished")
}

func (c *Controller) startTimerLocked() {
	c.stopTimerLocked()
	c.timerSeq++
	id := c.timerSeq
	c.session.Remaining = c.timeLimit
	c.ui.SetTimer(c.session.Remaining, c.session.Remaining <= warningThreshold)
	stop := c.clock.Every(tickInterval, func() { c.tick(id) })
	c.timer = &countdown{id: id, stop: stop}
}

func (c *Controller) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	c.timer.stop()
	c.timer = nil
}

func (c *Controller) tick(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// ticks from a stopped countdown can still be in flight
	if c.timer == nil || c.timer.id != id {
		return
	}
	s := c.session
	s.Remaining--
	c.ui.SetTimer(s.Remaining, s.Remaining <= warningThreshold)
	if s.Remaining > 0 {
		return
	}

	c.stopTimerLocked()
	if s.Answered {
		return
	}
	s.Answered = true
	c.state = StateAnswered
	c.ui.SetOptionsEnabled(false)
	c.ui.SetHelpEnabled(false)
	c.ui.ShowMessage(MsgTimeUp, MessageError)
	c.ui.SetNextEnabled(true)
}

func (c *Controller) fetch(ctx context.Context) ([]domain.Question, error) {
	raw, err := c.source.Fetch(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLoadFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailure, err)
	}
	return domain.ParseQuestionSet(raw)
}

// loadBest reads the persisted record. An unparsable value counts as no record;
// any other failure reports ok=false so a record is never written blindly.
func (c *Controller) loadBest(ctx context.Context) (int, bool) {
	best, err := c.best.Load(ctx)
	switch {
	case err == nil:
		return best, true
	case errors.Is(err, domain.ErrInvalidBestScore):
		c.log.Warn().Err(err).Msg("ignoring unreadable best score")
		return 0, true
	default:
		c.log.Warn().Err(err).Msg("best score unavailable")
		return 0, false
	}
}
