package shell

import (
	"io/fs"
	"testing"
	"time"

	"github.com/Zachkp/portfolio/internal/clock"
	"github.com/Zachkp/portfolio/internal/reveal"
)

func TestSections(t *testing.T) {
	sections, err := Sections()
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}

	want := []struct {
		id      string
		targets int
		step    time.Duration
	}{
		{"hero", 0, 150 * time.Millisecond},
		{"about", 4, 200 * time.Millisecond},
		{"internships", 2, 150 * time.Millisecond},
		{"projects", 4, 150 * time.Millisecond},
		{"contact", 3, 150 * time.Millisecond},
	}
	if len(sections) != len(want) {
		t.Fatalf("got %d sections, want %d", len(sections), len(want))
	}
	for i, w := range want {
		s := sections[i]
		if s.ID != w.id || s.Targets() != w.targets || s.Step != w.step {
			t.Fatalf("section %d = {%s %d %v}, want %+v", i, s.ID, s.Targets(), s.Step, w)
		}
		if s.Threshold != reveal.DefaultThreshold {
			t.Fatalf("section %s threshold %v", s.ID, s.Threshold)
		}
	}
}

func TestParseSections_BadAttributes(t *testing.T) {
	for _, doc := range []string{
		`<section id="a" data-reveal-step="fast"></section>`,
		`<section id="a" data-reveal-threshold="2"></section>`,
	} {
		if _, err := ParseSections([]byte(doc)); err == nil {
			t.Fatalf("expected error for %s", doc)
		}
	}
}

func TestContainer_RevealsInDocumentOrder(t *testing.T) {
	sections, err := ParseSections([]byte(`
<section id="s" data-reveal-step="100">
  <div class="scroll-animate">a</div>
  <div><p class="scroll-animate">b</p></div>
  <div class="other">x</div>
  <div class="scroll-animate">c</div>
</section>`))
	if err != nil {
		t.Fatalf("ParseSections: %v", err)
	}
	s := sections[0]

	c := clock.NewFake()
	var got []int
	sched := reveal.NewScheduler(reveal.WithClock(c))
	o, err := sched.Register("s-1", s.Container(func(i int) { got = append(got, i) }), reveal.Options{Step: s.Step, Threshold: s.Threshold})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	o.Intersect(1)
	c.Advance(time.Second)

	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("reveal order %v, want [0 1 2]", got)
	}
}

func TestFiles(t *testing.T) {
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		if _, err := fs.Stat(Files(), name); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
