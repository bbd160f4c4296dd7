package content

import "time"

const (
	TypeTick  = 100 * time.Millisecond
	TypePause = 2 * time.Second
)

// Typewriter cycles through roles one character at a time. A complete role
// stays up for one tick plus TypePause before the next role starts.
type Typewriter struct {
	roles []string
	role  int
	chars int
}

func NewTypewriter(roles []string) *Typewriter {
	return &Typewriter{roles: roles}
}

// Frame is one step of the animation.
type Frame struct {
	Text string
	// Wait is how long Text stays on screen before the next frame.
	Wait time.Duration
}

// Next returns the current frame and advances.
func (t *Typewriter) Next() Frame {
	if len(t.roles) == 0 {
		return Frame{Wait: TypePause}
	}
	runes := []rune(t.roles[t.role])
	f := Frame{Text: string(runes[:t.chars]), Wait: TypeTick}
	if t.chars == len(runes) {
		f.Wait = TypeTick + TypePause
		t.role = (t.role + 1) % len(t.roles)
		t.chars = 0
		return f
	}
	t.chars++
	return f
}

// Cycle returns the frames of one full pass over every role, starting from
// the first role regardless of where t currently is.
func (t *Typewriter) Cycle() []Frame {
	fresh := NewTypewriter(t.roles)
	n := 0
	for _, r := range t.roles {
		n += len([]rune(r)) + 1
	}
	frames := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, fresh.Next())
	}
	return frames
}
