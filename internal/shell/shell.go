// Package shell embeds the static client shell and exposes the structure
// of its sections: which elements each section reveals and how.
package shell

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Zachkp/portfolio/internal/reveal"
)

//go:embed web
var webFS embed.FS

// Files is the shell's static file tree rooted at web/.
func Files() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

// Index returns the raw index.html.
func Index() ([]byte, error) {
	return webFS.ReadFile("web/index.html")
}

// Section is one top-level section of the page.
type Section struct {
	ID        string
	Step      time.Duration
	Threshold float64

	sel *goquery.Selection
}

// Targets counts the section's reveal targets.
func (s Section) Targets() int {
	return s.sel.Find(reveal.Marker).Length()
}

// Container returns a reveal.Container over the section's markup. fn is
// called with the document-order index of each revealed target.
func (s Section) Container(fn func(index int)) reveal.Container {
	return container{sel: s.sel, fn: fn}
}

type container struct {
	sel *goquery.Selection
	fn  func(int)
}

func (c container) Query(marker string) []reveal.Node {
	found := c.sel.Find(marker)
	nodes := make([]reveal.Node, 0, found.Length())
	found.Each(func(i int, _ *goquery.Selection) {
		nodes = append(nodes, reveal.NodeFunc(func() {
			if c.fn != nil {
				c.fn(i)
			}
		}))
	})
	return nodes
}

// Sections parses the embedded shell.
func Sections() ([]Section, error) {
	raw, err := Index()
	if err != nil {
		return nil, err
	}
	return ParseSections(raw)
}

// ParseSections reads every section[id] in document order. Stagger step and
// threshold come from data-reveal-step (milliseconds) and
// data-reveal-threshold, falling back to the reveal defaults.
func ParseSections(html []byte) ([]Section, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse shell: %w", err)
	}

	var (
		out     []Section
		attrErr error
	)
	doc.Find("section[id]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		id, _ := sel.Attr("id")
		s := Section{ID: id, Step: reveal.DefaultStep, Threshold: reveal.DefaultThreshold, sel: sel}
		if v, ok := sel.Attr("data-reveal-step"); ok {
			ms, err := strconv.Atoi(v)
			if err != nil || ms <= 0 {
				attrErr = fmt.Errorf("section %s: bad data-reveal-step %q", id, v)
				return false
			}
			s.Step = time.Duration(ms) * time.Millisecond
		}
		if v, ok := sel.Attr("data-reveal-threshold"); ok {
			th, err := strconv.ParseFloat(v, 64)
			if err != nil || th <= 0 || th > 1 {
				attrErr = fmt.Errorf("section %s: bad data-reveal-threshold %q", id, v)
				return false
			}
			s.Threshold = th
		}
		out = append(out, s)
		return true
	})
	if attrErr != nil {
		return nil, attrErr
	}
	return out, nil
}

// Find returns the section with the given id.
func Find(sections []Section, id string) (Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}
