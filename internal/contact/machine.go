// Package contact holds the contact form and its submission state machine.
//
// Status moves only along idle -> submitting -> success|error -> idle.
// Invalid submissions are rejected synchronously and leave both the form
// and the status untouched. Delivery is delegated to a Submitter so the
// transport can be swapped without touching the machine.
package contact

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Zachkp/portfolio/internal/clock"
	"github.com/Zachkp/portfolio/internal/logging"
)

// DefaultResetAfter is how long success and error banners stay up.
const DefaultResetAfter = 5 * time.Second

var (
	ErrNotIdle = errors.New("contact: submission already in progress")
	ErrClosed  = errors.New("contact: form closed")
)

type Status int

const (
	Idle Status = iota
	Submitting
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Submitter delivers a validated form.
type Submitter interface {
	Submit(ctx context.Context, f Form) error
}

// SubmitterFunc adapts a function to a Submitter.
type SubmitterFunc func(ctx context.Context, f Form) error

func (fn SubmitterFunc) Submit(ctx context.Context, f Form) error { return fn(ctx, f) }

type Config struct {
	Submitter  Submitter
	Clock      clock.Clock
	ResetAfter time.Duration
	Log        *logrus.Entry
}

// Machine is the state of one contact form instance.
type Machine struct {
	submitter  Submitter
	clock      clock.Clock
	resetAfter time.Duration
	log        *logrus.Entry

	mu        sync.Mutex
	form      Form
	status    Status
	lastErr   error
	revert    clock.Timer
	cancel    context.CancelFunc
	listeners []func(Status)
	closed    bool
}

func NewMachine(cfg Config) *Machine {
	m := &Machine{
		submitter:  cfg.Submitter,
		clock:      cfg.Clock,
		resetAfter: cfg.ResetAfter,
		log:        cfg.Log,
	}
	if m.clock == nil {
		m.clock = clock.Real()
	}
	if m.resetAfter <= 0 {
		m.resetAfter = DefaultResetAfter
	}
	if m.log == nil {
		m.log = logging.Component("contact")
	}
	if m.submitter == nil {
		m.submitter = &Simulated{Clock: m.clock}
	}
	return m
}

// SetField updates a single field by its form name.
func (m *Machine) SetField(field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return m.form.set(field, value)
}

// Fill replaces every field at once.
func (m *Machine) Fill(f Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.form = f
	return nil
}

func (m *Machine) Form() Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err is the delivery error behind the current error status, if any.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Subscribe registers fn to be called on every status change. Listeners run
// on the goroutine that caused the change and must not call back into the
// machine synchronously.
func (m *Machine) Subscribe(fn func(Status)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Submit validates the form and starts delivery. The returned channel
// yields the outcome (Success or Error) once delivery completes and is
// then closed. Validation failures are returned as *ValidationError with
// the machine left unchanged.
func (m *Machine) Submit(ctx context.Context) (<-chan Status, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.status != Idle {
		m.mu.Unlock()
		return nil, ErrNotIdle
	}
	form := m.form
	if err := Validate(form); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.lastErr = nil
	listeners := m.transition(Submitting)
	m.mu.Unlock()
	notify(listeners, Submitting)

	done := make(chan Status, 1)
	go m.deliver(ctx, form, done)
	return done, nil
}

func (m *Machine) deliver(ctx context.Context, form Form, done chan<- Status) {
	defer close(done)
	err := m.submitter.Submit(ctx, form)

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.closed {
		m.mu.Unlock()
		return
	}
	next := Success
	if err != nil {
		next = Error
		m.lastErr = err
		m.log.WithError(err).Warn("contact submission failed")
	} else {
		m.form = Form{}
		m.log.WithField("from", form.Email).Info("contact submission delivered")
	}
	listeners := m.transition(next)
	m.revert = m.clock.AfterFunc(m.resetAfter, m.reset)
	m.mu.Unlock()

	notify(listeners, next)
	done <- next
}

func (m *Machine) reset() {
	m.mu.Lock()
	if m.closed || (m.status != Success && m.status != Error) {
		m.mu.Unlock()
		return
	}
	m.revert = nil
	m.lastErr = nil
	listeners := m.transition(Idle)
	m.mu.Unlock()
	notify(listeners, Idle)
}

// transition sets the status and returns the listeners to notify once the
// lock is released. Caller holds mu.
func (m *Machine) transition(s Status) []func(Status) {
	m.status = s
	return append([]func(Status){}, m.listeners...)
}

func notify(listeners []func(Status), s Status) {
	for _, fn := range listeners {
		fn(s)
	}
}

// Close cancels an in-flight delivery and the pending reset timer. The
// machine rejects further input afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.revert != nil {
		m.revert.Stop()
		m.revert = nil
	}
}
