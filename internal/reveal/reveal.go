// Package reveal schedules staggered "in view" reveals for the animated
// children of a page section.
//
// A rendering host registers each mounted section instance with a
// Scheduler and forwards viewport intersection ratios to the returned
// Observation. The first intersection at or above the threshold queries the
// container for its reveal targets in document order and reveals target i
// after i*Step. Reveals are monotonic and later intersections never
// reschedule or undo anything. Tearing an instance down releases every
// timer it still holds.
package reveal

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Zachkp/portfolio/internal/clock"
	"github.com/Zachkp/portfolio/internal/logging"
)

// Marker selects the animated descendants of a section.
const Marker = ".scroll-animate"

const (
	DefaultThreshold = 0.1
	DefaultStep      = 150 * time.Millisecond
)

var (
	ErrDuplicateInstance = errors.New("reveal: instance already registered")
	ErrTornDown          = errors.New("reveal: scheduler closed")
)

// Node is a reveal target supplied by the rendering host.
type Node interface {
	// Reveal applies the in-view effect. It is called at most once per node.
	Reveal()
}

// Container is a mounted section that can be queried for descendants.
type Container interface {
	Query(marker string) []Node
}

// NodeFunc adapts a function to a Node.
type NodeFunc func()

func (f NodeFunc) Reveal() { f() }

type Options struct {
	// Threshold is the visible fraction of the container that counts as
	// entering the viewport.
	Threshold float64
	// Step is the delay between consecutive targets.
	Step time.Duration
}

func (o *Options) defaults() {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
}

// Event records a single reveal on the scheduler's timeline.
type Event struct {
	Instance string
	Index    int
	At       time.Time
}

// Scheduler owns the observations of every mounted section instance.
type Scheduler struct {
	clock clock.Clock
	sink  func(Event)
	log   *logrus.Entry

	mu     sync.Mutex
	live   map[string]*Observation
	closed bool
}

type Option func(*Scheduler)

// WithClock overrides the real clock.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithSink receives every reveal event. The sink runs on the timer goroutine.
func WithSink(f func(Event)) Option {
	return func(s *Scheduler) { s.sink = f }
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: clock.Real(),
		log:   logging.Component("reveal"),
		live:  make(map[string]*Observation),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register starts observing c under the given instance identity.
func (s *Scheduler) Register(instance string, c Container, opts Options) (*Observation, error) {
	opts.defaults()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrTornDown
	}
	if _, ok := s.live[instance]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateInstance, instance)
	}
	o := &Observation{
		s:         s,
		instance:  instance,
		container: c,
		opts:      opts,
	}
	s.live[instance] = o
	return o, nil
}

// Live reports the number of registered instances.
func (s *Scheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close tears down every live instance. Register fails afterwards.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	live := make([]*Observation, 0, len(s.live))
	for _, o := range s.live {
		live = append(live, o)
	}
	s.mu.Unlock()

	for _, o := range live {
		o.Teardown()
	}
}

func (s *Scheduler) forget(instance string) {
	s.mu.Lock()
	delete(s.live, instance)
	s.mu.Unlock()
}

// Observation is the reveal state of one mounted section instance.
type Observation struct {
	s         *Scheduler
	instance  string
	container Container
	opts      Options

	mu        sync.Mutex
	triggered bool
	torndown  bool
	targets   []*target
}

type target struct {
	node     Node
	revealed bool
	timer    clock.Timer
}

// Intersect reports the currently visible fraction of the container. Only
// the first report at or above the threshold has an effect.
func (o *Observation) Intersect(ratio float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.torndown || o.triggered || ratio < o.opts.Threshold {
		return
	}
	o.triggered = true

	nodes := o.container.Query(Marker)
	o.targets = make([]*target, len(nodes))
	for i, n := range nodes {
		tg := &target{node: n}
		o.targets[i] = tg
		idx := i
		tg.timer = o.s.clock.AfterFunc(time.Duration(i)*o.opts.Step, func() {
			o.fire(idx)
		})
	}
	o.s.log.WithFields(logrus.Fields{
		"instance": o.instance,
		"targets":  len(nodes),
		"step":     o.opts.Step,
	}).Debug("section entered view")
}

func (o *Observation) fire(i int) {
	o.mu.Lock()
	if o.torndown {
		o.mu.Unlock()
		return
	}
	tg := o.targets[i]
	if tg.revealed {
		o.mu.Unlock()
		return
	}
	tg.revealed = true
	tg.timer = nil
	o.mu.Unlock()

	tg.node.Reveal()
	if o.s.sink != nil {
		o.s.sink(Event{Instance: o.instance, Index: i, At: o.s.clock.Now()})
	}
}

// Teardown stops observing, cancels pending reveals and unregisters the
// instance. It is safe to call more than once.
func (o *Observation) Teardown() {
	o.mu.Lock()
	if o.torndown {
		o.mu.Unlock()
		return
	}
	o.torndown = true
	cancelled := 0
	for _, tg := range o.targets {
		if tg.timer != nil && tg.timer.Stop() {
			cancelled++
		}
		tg.timer = nil
	}
	o.mu.Unlock()

	o.s.forget(o.instance)
	if cancelled > 0 {
		o.s.log.WithFields(logrus.Fields{
			"instance":  o.instance,
			"cancelled": cancelled,
		}).Debug("cancelled pending reveals")
	}
}

func (o *Observation) Instance() string { return o.instance }

// Triggered reports whether the container has entered the viewport.
func (o *Observation) Triggered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.triggered
}

// Len is the number of targets found on entry, zero before.
func (o *Observation) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.targets)
}

func (o *Observation) Revealed(i int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i < 0 || i >= len(o.targets) {
		return false
	}
	return o.targets[i].revealed
}

func (o *Observation) RevealedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, tg := range o.targets {
		if tg.revealed {
			n++
		}
	}
	return n
}

// Delays returns the stagger offsets for n targets.
func Delays(n int, step time.Duration) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = time.Duration(i) * step
	}
	return out
}
