package contact

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Zachkp/portfolio/internal/clock"
)

var validForm = Form{
	Name:    "Mohan",
	Email:   "a@b.com",
	Subject: "Collaboration",
	Message: "Let's build something together",
}

func TestValidate_Order(t *testing.T) {
	cases := []struct {
		name  string
		form  Form
		field string
		msg   string
	}{
		{"empty name wins", Form{Email: "a@b.com", Subject: "x", Message: "short"}, "name", "Name is required"},
		{"blank name", Form{Name: "   ", Email: "a@b.com", Subject: "x", Message: "long enough!"}, "name", "Name is required"},
		{"empty email", Form{Name: "n", Subject: "x", Message: "long enough!"}, "email", "Email is required"},
		{"bad email", Form{Name: "n", Email: "a@b", Subject: "x", Message: "long enough!"}, "email", "Please enter a valid email"},
		{"email with space", Form{Name: "n", Email: "a b@c.com", Subject: "x", Message: "long enough!"}, "email", "Please enter a valid email"},
		{"empty subject", Form{Name: "n", Email: "a@b.com", Subject: " ", Message: "long enough!"}, "subject", "Subject is required"},
		{"empty message", Form{Name: "n", Email: "a@b.com", Subject: "x", Message: "  "}, "message", "Message is required"},
		{"short message", Form{Name: "n", Email: "a@b.com", Subject: "x", Message: "short"}, "message", "Message must be at least 10 characters"},
		{"padded short message", Form{Name: "n", Email: "a@b.com", Subject: "x", Message: "   123456789   "}, "message", "Message must be at least 10 characters"},
	}
	for _, tc := range cases {
		err := Validate(tc.form)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected *ValidationError, got %v", tc.name, err)
		}
		if verr.Field != tc.field || verr.Message != tc.msg {
			t.Fatalf("%s: got %s/%q, want %s/%q", tc.name, verr.Field, verr.Message, tc.field, tc.msg)
		}
	}

	if err := Validate(validForm); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
	if err := Validate(Form{Name: "n", Email: "a@b.com", Subject: "x", Message: "exactly10!"}); err != nil {
		t.Fatalf("10 character message rejected: %v", err)
	}
}

type gatedSubmitter struct {
	mu      sync.Mutex
	calls   int
	release chan error
}

func newGated() *gatedSubmitter { return &gatedSubmitter{release: make(chan error)} }

func (g *gatedSubmitter) Submit(ctx context.Context, _ Form) error {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gatedSubmitter) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestMachine_InvalidLeavesStateUnchanged(t *testing.T) {
	sub := newGated()
	m := NewMachine(Config{Submitter: sub, Clock: clock.NewFake()})
	in := Form{Email: "a@b.com", Subject: "x", Message: "short"}
	if err := m.Fill(in); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	_, err := m.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if m.Status() != Idle {
		t.Fatalf("status = %v, want idle", m.Status())
	}
	if m.Form() != in {
		t.Fatalf("form changed: %+v", m.Form())
	}
	if sub.Calls() != 0 {
		t.Fatalf("submitter called for an invalid form")
	}
}

func TestMachine_SuccessClearsAndReverts(t *testing.T) {
	c := clock.NewFake()
	sub := newGated()
	m := NewMachine(Config{Submitter: sub, Clock: c, ResetAfter: 5 * time.Second})
	defer m.Close()

	var mu sync.Mutex
	var seen []Status
	m.Subscribe(func(s Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	for field, v := range map[string]string{
		"name": validForm.Name, "email": validForm.Email,
		"subject": validForm.Subject, "message": validForm.Message,
	} {
		if err := m.SetField(field, v); err != nil {
			t.Fatalf("SetField(%s): %v", field, err)
		}
	}

	done, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if m.Status() != Submitting {
		t.Fatalf("status = %v, want submitting", m.Status())
	}
	if _, err := m.Submit(context.Background()); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("second submit: got %v, want ErrNotIdle", err)
	}

	sub.release <- nil
	if got := <-done; got != Success {
		t.Fatalf("outcome = %v, want success", got)
	}
	if m.Status() != Success {
		t.Fatalf("status = %v, want success", m.Status())
	}
	if !m.Form().Empty() {
		t.Fatalf("form not cleared: %+v", m.Form())
	}

	c.Advance(4 * time.Second)
	if m.Status() != Success {
		t.Fatalf("reverted too early")
	}
	c.Advance(time.Second)
	if m.Status() != Idle {
		t.Fatalf("status = %v after reset timeout, want idle", m.Status())
	}

	mu.Lock()
	defer mu.Unlock()
	want := []Status{Submitting, Success, Idle}
	if len(seen) != len(want) {
		t.Fatalf("transitions %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions %v, want %v", seen, want)
		}
	}
}

func TestMachine_ErrorPreservesForm(t *testing.T) {
	c := clock.NewFake()
	sub := newGated()
	m := NewMachine(Config{Submitter: sub, Clock: c})
	defer m.Close()
	_ = m.Fill(validForm)

	done, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	boom := errors.New("smtp down")
	sub.release <- boom
	if got := <-done; got != Error {
		t.Fatalf("outcome = %v, want error", got)
	}
	if m.Form() != validForm {
		t.Fatalf("form not preserved: %+v", m.Form())
	}
	if !errors.Is(m.Err(), boom) {
		t.Fatalf("Err() = %v, want %v", m.Err(), boom)
	}

	c.Advance(DefaultResetAfter)
	if m.Status() != Idle || m.Err() != nil {
		t.Fatalf("status = %v err = %v after reset, want idle/nil", m.Status(), m.Err())
	}

	// the preserved form can be resubmitted once idle
	done, err = m.Submit(context.Background())
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	sub.release <- nil
	if got := <-done; got != Success {
		t.Fatalf("resubmit outcome = %v", got)
	}
}

func TestMachine_CloseCancelsDeliveryAndTimer(t *testing.T) {
	c := clock.NewFake()
	sub := newGated()
	m := NewMachine(Config{Submitter: sub, Clock: c})
	_ = m.Fill(validForm)

	done, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Close()
	if _, ok := <-done; ok {
		t.Fatalf("expected no outcome after Close")
	}
	if c.Pending() != 0 {
		t.Fatalf("close left %d timers", c.Pending())
	}
	if err := m.SetField("name", "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("SetField after Close: %v", err)
	}
}

func TestMachine_CloseStopsResetTimer(t *testing.T) {
	c := clock.NewFake()
	sub := newGated()
	m := NewMachine(Config{Submitter: sub, Clock: c})
	_ = m.Fill(validForm)
	done, _ := m.Submit(context.Background())
	sub.release <- nil
	<-done
	if c.Pending() != 1 {
		t.Fatalf("expected the reset timer to be pending, got %d", c.Pending())
	}
	m.Close()
	if c.Pending() != 0 {
		t.Fatalf("close left the reset timer running")
	}
}

func TestSetField_Unknown(t *testing.T) {
	m := NewMachine(Config{Clock: clock.NewFake()})
	if err := m.SetField("phone", "1"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestSimulated(t *testing.T) {
	c := clock.NewFake()
	s := &Simulated{Clock: c, Delay: 2 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- s.Submit(context.Background(), validForm) }()
	c.BlockUntil(1)
	c.Advance(2 * time.Second)
	if err := <-errc; err != nil {
		t.Fatalf("Submit: %v", err)
	}

	s.Fail = true
	go func() { errc <- s.Submit(context.Background(), validForm) }()
	c.BlockUntil(1)
	c.Advance(2 * time.Second)
	if err := <-errc; !errors.Is(err, ErrSimulatedFailure) {
		t.Fatalf("got %v, want ErrSimulatedFailure", err)
	}
}

func TestSimulated_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Simulated{Clock: clock.NewFake()}
	if err := s.Submit(ctx, validForm); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{Idle: "idle", Submitting: "submitting", Success: "success", Error: "error"} {
		if s.String() != want {
			t.Fatalf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
