package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/llm"
	"ai-terminal/internal/model"
)

// State is the lifecycle position of the single in-flight request.
type State int

const (
	StateIdle State = iota
	StateSubmitted
	StateStreaming
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSubmitted:
		return "Submitted"
	case StateStreaming:
		return "Streaming"
	case StateCommitted:
		return "Committed"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// errIncompleteStream marks a stream that closed without a completion signal.
var errIncompleteStream = errors.New("the response ended before it was complete")

// Committer receives a finished assistant turn.
type Committer interface {
	CommitAssistantMessage(sessionID string, msg model.Message) error
}

// Event describes one reconciler transition or content append.
type Event struct {
	State     State
	SessionID string
	// Delta is the text appended by this event, empty for pure transitions.
	Delta string
	// Message is the accumulated assistant message at the time of the event.
	Message model.Message
	// Err is set on entry to Failed when the failure is shown to the user.
	Err *app_errors.ChatError
}

// Observer is called synchronously, in order, for every Event, from the
// goroutine running the request and with no reconciler or terminal lock held.
// Every event of a request carries its session id.
type Observer func(Event)

// Reconciler drives one request at a time through
// Idle -> Submitted -> Streaming -> Committed|Failed -> Idle.
// Partial content is only ever visible through Streaming; it reaches the
// committer once, and only after the upstream signalled completion.
type Reconciler struct {
	streamer  llm.ChatStreamer
	committer Committer

	mu        sync.Mutex
	state     State
	sessionID string
	message   model.Message
	content   strings.Builder
	lastErr   *app_errors.ChatError
	idle      chan struct{}
	observers []Observer
}

func NewReconciler(streamer llm.ChatStreamer, committer Committer) *Reconciler {
	idle := make(chan struct{})
	close(idle)
	return &Reconciler{
		streamer:  streamer,
		committer: committer,
		idle:      idle,
	}
}

// Subscribe registers an observer for all later events.
func (r *Reconciler) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Begin admits a new request. It fails with ErrBusy unless the reconciler is
// Idle; nothing is queued. The Submitted event is emitted by Run once the
// request is bound to its session.
func (r *Reconciler) Begin() error {
	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		r.mu.Unlock()
		slog.Warn("Rejected submission while busy", "state", state.String())
		return app_errors.ErrBusy
	}

	r.state = StateSubmitted
	r.sessionID = ""
	r.message = model.Message{ID: uuid.NewString(), Role: model.RoleAssistant, Streaming: true}
	r.content.Reset()
	r.lastErr = nil
	r.idle = make(chan struct{})
	r.mu.Unlock()
	return nil
}

// Release returns an admitted but never dispatched request to Idle.
func (r *Reconciler) Release() {
	r.mu.Lock()
	if r.state != StateSubmitted {
		r.mu.Unlock()
		return
	}
	r.resetLocked()
	r.mu.Unlock()
}

// Run streams req and reconciles the outcome into sessionID. It returns the
// classified error for a failed turn and nil for a committed one. Run must
// follow a successful Begin; the reconciler is Idle again when it returns.
func (r *Reconciler) Run(ctx context.Context, sessionID string, req *model.ChatRequest) *app_errors.ChatError {
	r.mu.Lock()
	r.sessionID = sessionID
	ev := r.eventLocked("")
	observers := r.observers
	r.mu.Unlock()
	notify(observers, ev)

	ch := make(chan model.StreamResponse)
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.streamer.Stream(ctx, req, ch)
	}()

	var failure error
	completed := false
	for chunk := range ch {
		if completed || failure != nil {
			continue
		}
		if chunk.Error != "" {
			failure = &app_errors.UpstreamError{Status: chunk.Status, Message: chunk.Error}
			continue
		}
		r.appendDelta(chunk.Content)
		if chunk.Done {
			completed = true
		}
	}
	streamErr := <-errCh

	if failure == nil && !completed {
		failure = streamErr
		if failure == nil {
			failure = errIncompleteStream
		}
	}

	if failure != nil {
		return r.fail(ctx, failure)
	}
	r.commit(ctx)
	return nil
}

func (r *Reconciler) appendDelta(delta string) {
	r.mu.Lock()
	if r.state != StateSubmitted && r.state != StateStreaming {
		r.mu.Unlock()
		return
	}
	if delta == "" && r.state == StateStreaming {
		r.mu.Unlock()
		return
	}
	r.state = StateStreaming
	r.content.WriteString(delta)
	r.message.Content = r.content.String()
	ev := r.eventLocked(delta)
	observers := r.observers
	r.mu.Unlock()

	notify(observers, ev)
}

func (r *Reconciler) commit(ctx context.Context) {
	r.mu.Lock()
	r.state = StateCommitted
	sessionID := r.sessionID
	msg := r.message
	msg.Streaming = false
	ev := r.eventLocked("")
	observers := r.observers
	r.mu.Unlock()

	if err := r.committer.CommitAssistantMessage(sessionID, msg); err != nil {
		// The session vanished mid-stream; there is nothing to show the user.
		slog.ErrorContext(ctx, "Dropping completed response", "session_id", sessionID, "error", err)
		r.mu.Lock()
		r.state = StateFailed
		ev = r.eventLocked("")
		r.mu.Unlock()
	} else {
		slog.DebugContext(ctx, "Committed assistant message", "session_id", sessionID, "message_id", msg.ID, "chars", len(msg.Content))
	}
	notify(observers, ev)
	r.finish()
}

func (r *Reconciler) fail(ctx context.Context, cause error) *app_errors.ChatError {
	classified := app_errors.ClassifyError(cause)

	r.mu.Lock()
	r.state = StateFailed
	r.lastErr = classified
	sessionID := r.sessionID
	ev := r.eventLocked("")
	ev.Err = classified
	observers := r.observers
	r.mu.Unlock()

	slog.WarnContext(ctx, "Request failed", "session_id", sessionID, "kind", classified.Kind.String(), "error", cause)
	notify(observers, ev)
	r.finish()
	return classified
}

func (r *Reconciler) finish() {
	r.mu.Lock()
	r.resetLocked()
	ev := r.eventLocked("")
	observers := r.observers
	r.mu.Unlock()

	notify(observers, ev)
}

func (r *Reconciler) resetLocked() {
	r.state = StateIdle
	r.sessionID = ""
	r.message = model.Message{}
	r.content.Reset()
	close(r.idle)
}

func (r *Reconciler) eventLocked(delta string) Event {
	return Event{State: r.state, SessionID: r.sessionID, Delta: delta, Message: r.message}
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Streaming returns the in-flight assistant message and the session it
// belongs to. ok is false unless a request is Submitted or Streaming.
func (r *Reconciler) Streaming() (sessionID string, msg model.Message, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateSubmitted && r.state != StateStreaming {
		return "", model.Message{}, false
	}
	return r.sessionID, r.message, true
}

// Err returns the error from the most recent failed request, if any.
func (r *Reconciler) Err() *app_errors.ChatError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func (r *Reconciler) DismissError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = nil
}

// Wait blocks until the reconciler is Idle or ctx is done.
func (r *Reconciler) Wait(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func notify(observers []Observer, ev Event) {
	for _, o := range observers {
		o(ev)
	}
}
