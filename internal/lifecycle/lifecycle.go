package lifecycle

import (
	"context"
	"errors"
	"sync"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/logger"
)

var (
	// ErrBusy is returned when a request is already loading
	ErrBusy = errors.New("a request is already in progress")
	// ErrResultPending is returned when a result must be dismissed first
	ErrResultPending = errors.New("dismiss the current result before starting a new request")
)

const (
	eventStart   = "start"
	eventSucceed = "succeed"
	eventFail    = "fail"
	eventReset   = "reset"
)

// Messages holds the i18n keys shown for each failure kind
type Messages struct {
	Generic    string
	Permission string
}

// Call is one invocation of the external collaborator
type Call func(ctx context.Context) (domain.Payload, error)

// Ticket identifies one started request. Only the ticket of the latest
// request may settle the lifecycle.
type Ticket struct {
	seq uint64
}

// Lifecycle tracks the outcome of a module's requests to the collaborator
type Lifecycle struct {
	mu       sync.Mutex
	machine  *fsm.FSM
	seq      uint64
	outcome  domain.RequestOutcome
	messages Messages
	log      *logrus.Entry
	wg       sync.WaitGroup
}

// New returns an idle lifecycle
func New(messages Messages, log *logrus.Entry) *Lifecycle {
	if log == nil {
		log = logger.Discard()
	}
	l := &Lifecycle{
		outcome:  domain.Idle(),
		messages: messages,
		log:      log,
	}
	l.machine = fsm.NewFSM(
		string(domain.StatusIdle),
		fsm.Events{
			{Name: eventStart, Src: []string{string(domain.StatusIdle)}, Dst: string(domain.StatusLoading)},
			{Name: eventSucceed, Src: []string{string(domain.StatusLoading)}, Dst: string(domain.StatusSuccess)},
			{Name: eventFail, Src: []string{string(domain.StatusLoading)}, Dst: string(domain.StatusFailure)},
			{Name: eventReset, Src: []string{
				string(domain.StatusLoading),
				string(domain.StatusSuccess),
				string(domain.StatusFailure),
			}, Dst: string(domain.StatusIdle)},
		},
		fsm.Callbacks{
			"after_event": func(e *fsm.Event) {
				l.log.WithField("event", e.Event).Debugf("[%s -> %s]", e.Src, e.Dst)
			},
		},
	)
	return l
}

// Outcome returns a copy of the current outcome
func (l *Lifecycle) Outcome() domain.RequestOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outcome
}

// Begin moves to Loading. A failed lifecycle is reset first so the same
// action can be retried.
func (l *Lifecycle) Begin() (Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch domain.Status(l.machine.Current()) {
	case domain.StatusLoading:
		return Ticket{}, ErrBusy
	case domain.StatusSuccess:
		return Ticket{}, ErrResultPending
	case domain.StatusFailure:
		l.resetLocked()
	}

	if err := l.machine.Event(eventStart); err != nil {
		return Ticket{}, err
	}
	l.seq++
	l.outcome = domain.RequestOutcome{Status: domain.StatusLoading}
	return Ticket{seq: l.seq}, nil
}

// Settle applies the result of the request identified by t. It reports false
// when the request was superseded and the result dropped.
func (l *Lifecycle) Settle(t Ticket, payload domain.Payload, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.seq != l.seq || !l.machine.Is(string(domain.StatusLoading)) {
		l.log.WithField("ticket", t.seq).Debug("dropping superseded result")
		return false
	}

	if err == nil {
		if ferr := l.machine.Event(eventSucceed); ferr != nil {
			return false
		}
		l.outcome = domain.RequestOutcome{Status: domain.StatusSuccess, Payload: payload}
		return true
	}

	if ferr := l.machine.Event(eventFail); ferr != nil {
		return false
	}
	kind := Classify(err)
	key := l.messages.Generic
	if kind == domain.PermissionError {
		key = l.messages.Permission
	}
	l.outcome = domain.RequestOutcome{
		Status:     domain.StatusFailure,
		ErrorKind:  kind,
		MessageKey: key,
		Detail:     err.Error(),
	}
	l.log.WithError(err).WithField("kind", kind).Warn("request failed")
	return true
}

// Start runs call on its own goroutine. Without an input image it does
// nothing and returns a nil channel. The returned channel is closed once the
// call has returned, whether or not its result was applied.
func (l *Lifecycle) Start(ctx context.Context, input domain.EncodedImage, call Call) (<-chan struct{}, error) {
	if input.IsZero() {
		return nil, nil
	}
	t, err := l.Begin()
	if err != nil {
		return nil, err
	}

	// the call outlives the request that triggered it
	ctx = context.WithoutCancel(ctx)
	done := make(chan struct{})
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(done)
		payload, err := call(ctx)
		l.Settle(t, payload, err)
	}()
	return done, nil
}

// Run starts call and waits for it to return
func (l *Lifecycle) Run(ctx context.Context, input domain.EncodedImage, call Call) error {
	done, err := l.Start(ctx, input, call)
	if err != nil || done == nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset returns to Idle with no result or error. Any request still in
// flight is superseded.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetLocked()
}

// ClearError returns a failed lifecycle to Idle, leaving other states alone
func (l *Lifecycle) ClearError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.machine.Is(string(domain.StatusFailure)) {
		l.resetLocked()
	}
}

// Wait blocks until every started call has returned
func (l *Lifecycle) Wait() {
	l.wg.Wait()
}

func (l *Lifecycle) resetLocked() {
	l.seq++
	l.outcome = domain.Idle()
	err := l.machine.Event(eventReset)
	var invalid fsm.InvalidEventError
	if err != nil && !errors.As(err, &invalid) {
		l.log.WithError(err).Error("reset")
	}
}
