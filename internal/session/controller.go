package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Option func(*Controller)

// WithPolicy replaces the heuristic progress policy.
func WithPolicy(p ProgressPolicy) Option {
	return func(c *Controller) {
		if p != nil {
			c.policy = p
		}
	}
}

// Controller tracks at most one download session at a time.
type Controller struct {
	dial     DialFunc
	renderer Renderer
	policy   ProgressPolicy

	mu      sync.Mutex
	current *downloadSession
}

type downloadSession struct {
	id         string
	link       string
	stream     Stream
	progress   Progress
	terminated bool
	outcome    Outcome
	successLog bool
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewController(dial DialFunc, renderer Renderer, opts ...Option) *Controller {
	if renderer == nil {
		renderer = RendererFunc(func(Instruction) {})
	}
	c := &Controller{
		dial:     dial,
		renderer: renderer,
		policy:   HeuristicStep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartDownload discards any running session and begins tracking link. It does
// not wait for the stream to open.
func (c *Controller) StartDownload(ctx context.Context, link string) error {
	link = strings.TrimSpace(link)
	c.mu.Lock()
	defer c.mu.Unlock()
	if link == "" {
		c.renderer.Render(Instruction{Kind: ShowError, Text: EmptyLinkMessage})
		return ErrEmptyLink
	}
	if prev := c.current; prev != nil && !prev.terminated {
		log.Debug().Str("op", "session/controller").Msgf("discarding session %s", prev.id)
		c.release(prev)
		close(prev.done)
	}
	runCtx, cancel := context.WithCancel(ctx)
	sess := &downloadSession{
		id:       uuid.New().String(),
		link:     link,
		progress: Progress{Percent: 0, Visible: true},
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.current = sess
	log.Info().Str("op", "session/controller").Str("session", sess.id).Msgf("starting download for %s", link)
	c.emit(sess, Instruction{Kind: ShowProgress})
	c.emit(sess, Instruction{Kind: SetProgress, Progress: 0})
	go c.run(runCtx, sess)
	return nil
}

func (c *Controller) run(ctx context.Context, sess *downloadSession) {
	s, err := c.dial(ctx, sess.link)
	c.mu.Lock()
	if sess.terminated {
		c.mu.Unlock()
		if s != nil {
			s.Close()
		}
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.handleTransportError(sess, err)
		return
	}
	sess.stream = s
	c.mu.Unlock()

	for {
		data, err := s.Recv()
		if err != nil {
			c.handleTransportError(sess, err)
			return
		}
		c.handleMessage(sess, data)
	}
}

func (c *Controller) handleMessage(sess *downloadSession, data string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess.terminated {
		return
	}
	kind, text := Classify(data)
	log.Debug().Str("op", "session/controller").Str("session", sess.id).Str("kind", kind.String()).Msg(data)
	switch kind {
	case KindArtifact:
		sess.progress.Percent = 100
		c.emit(sess, Instruction{Kind: SetProgress, Progress: 100})
		c.finalize(sess, Outcome{Status: Succeeded, Path: text},
			Instruction{Kind: ShowDownload, Text: text})
	case KindSuccessLog:
		sess.successLog = true
		c.emit(sess, Instruction{Kind: AppendLog, Text: text, Success: true})
	case KindFailure:
		c.finalize(sess, Outcome{Status: Failed, Message: text},
			Instruction{Kind: ShowError, Text: text})
	default:
		c.emit(sess, Instruction{Kind: AppendLog, Text: text})
		next := clampPercent(c.policy(sess.progress.Percent))
		if next > sess.progress.Percent {
			sess.progress.Percent = next
		}
		c.emit(sess, Instruction{Kind: SetProgress, Progress: sess.progress.Percent})
	}
}

func (c *Controller) handleTransportError(sess *downloadSession, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess.terminated {
		return
	}
	if errors.Is(err, context.Canceled) {
		log.Debug().Str("op", "session/controller").Str("session", sess.id).Msg("stream cancelled")
	} else {
		log.Warn().Str("op", "session/controller").Str("session", sess.id).Err(err).Msg("stream transport error")
	}
	if sess.successLog {
		c.finalize(sess, Outcome{Status: Succeeded})
		return
	}
	c.finalize(sess, Outcome{Status: Failed, Message: TransportErrorMessage},
		Instruction{Kind: ShowError, Text: TransportErrorMessage})
}

// finalize is the single terminal transition for both the classifier and the
// transport error path. Callers hold c.mu.
func (c *Controller) finalize(sess *downloadSession, outcome Outcome, final ...Instruction) {
	if sess.terminated {
		return
	}
	c.release(sess)
	sess.outcome = outcome
	for _, in := range final {
		c.emit(sess, in)
	}
	c.emit(sess, Instruction{Kind: HideProgress})
	log.Info().Str("op", "session/controller").Str("session", sess.id).Msgf("session %s", outcome.Status)
	close(sess.done)
}

// release marks sess terminated and closes its stream without emitting anything.
func (c *Controller) release(sess *downloadSession) {
	sess.terminated = true
	sess.progress.Visible = false
	if sess.stream != nil {
		if err := sess.stream.Close(); err != nil {
			log.Debug().Str("op", "session/controller").Err(err).Msg("error closing stream")
		}
	}
	sess.cancel()
}

func (c *Controller) emit(sess *downloadSession, in Instruction) {
	in.SessionID = sess.id
	c.renderer.Render(in)
}

// Wait blocks until the current session terminates and returns its outcome.
func (c *Controller) Wait(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return Outcome{}, ErrNoSession
	}
	select {
	case <-sess.done:
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return sess.outcome, nil
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess := c.current
	if sess == nil {
		return State{Phase: Idle}
	}
	phase := Active
	if sess.terminated {
		phase = Terminated
	}
	return State{
		ID:         sess.id,
		Link:       sess.link,
		Phase:      phase,
		Progress:   sess.progress,
		Terminated: sess.terminated,
		Outcome:    sess.outcome,
		SuccessLog: sess.successLog,
	}
}

// Close discards the current session, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess := c.current; sess != nil && !sess.terminated {
		c.release(sess)
		close(sess.done)
	}
}
