package content

import (
	"strings"
	"testing"
	"time"

	"github.com/Zachkp/portfolio/internal/collection"
)

func TestLoad(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Projects) != 6 {
		t.Fatalf("expected 6 projects, got %d", len(p.Projects))
	}
	if len(p.Internships) != 4 {
		t.Fatalf("expected 4 internships, got %d", len(p.Internships))
	}
	if len(p.Profile.Roles) != 4 {
		t.Fatalf("expected 4 hero roles, got %d", len(p.Profile.Roles))
	}
	if p.About.Quote.Native == "" || p.Contact.Quote.English == "" {
		t.Fatalf("bilingual quotes missing")
	}
}

func TestProjectCollection(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, err := p.ProjectCollection()
	if err != nil {
		t.Fatalf("ProjectCollection: %v", err)
	}

	featured := c.View(collection.Featured)
	if len(featured) != 3 || featured[0].ID != 1 || featured[2].ID != 3 {
		t.Fatalf("unexpected featured projects: %+v", featured)
	}
	ai := c.View("ai")
	if len(ai) != 3 {
		t.Fatalf("expected 3 ai projects, got %d", len(ai))
	}
	for _, pr := range ai {
		if pr.Category != "ai" {
			t.Fatalf("project %d has category %q", pr.ID, pr.Category)
		}
	}
	if got := c.View("iot"); len(got) != 0 {
		t.Fatalf("expected no iot projects, got %d", len(got))
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"no roles": `
filters: [{key: all}, {key: featured}]
`,
		"duplicate project": `
profile: {roles: [dev]}
filters: [{key: all}, {key: featured}, {key: ai}]
projects: [{id: 1, category: ai}, {id: 1, category: ai}]
`,
		"undeclared category": `
profile: {roles: [dev]}
filters: [{key: all}, {key: featured}, {key: ai}]
projects: [{id: 1, category: ai}, {id: 2, category: AI}]
`,
		"category named like a built-in filter": `
profile: {roles: [dev]}
filters: [{key: all}, {key: featured}]
projects: [{id: 1, category: featured}]
`,
		"duplicate internship": `
profile: {roles: [dev]}
filters: [{key: all}, {key: featured}]
internships: [{id: 2}, {id: 2}]
`,
		"skill range": `
profile: {roles: [dev]}
filters: [{key: all}, {key: featured}]
about: {skills: [{name: x, percentage: 120}]}
`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLint(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if problems := p.Lint(); len(problems) != 0 {
		t.Fatalf("embedded content has link problems: %v", problems)
	}

	p.Projects[0].Live = "ftp://example.com"
	p.Projects[1].GitHub = "https:///no-host"
	p.Contact.Info[0].Href = "mailto:"
	problems := p.Lint()
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(problems), problems)
	}
	if !strings.Contains(problems[0].String(), "projects[1].live") {
		t.Fatalf("unexpected first problem: %s", problems[0])
	}
}

func TestTypewriter(t *testing.T) {
	tw := NewTypewriter([]string{"AI", "Go"})

	want := []Frame{
		{"", TypeTick},
		{"A", TypeTick},
		{"AI", TypeTick + TypePause},
		{"", TypeTick},
		{"G", TypeTick},
		{"Go", TypeTick + TypePause},
		{"", TypeTick},
	}
	for i, w := range want {
		if got := tw.Next(); got != w {
			t.Fatalf("frame %d = %+v, want %+v", i, got, w)
		}
	}

	cycle := tw.Cycle()
	if len(cycle) != 6 {
		t.Fatalf("cycle has %d frames, want 6", len(cycle))
	}
	for i := range cycle {
		if cycle[i] != want[i] {
			t.Fatalf("cycle frame %d = %+v, want %+v", i, cycle[i], want[i])
		}
	}
	if cycle[2].Wait != 2100*time.Millisecond {
		t.Fatalf("complete role held for %v, want 2.1s", cycle[2].Wait)
	}
}

func TestTypewriter_Empty(t *testing.T) {
	if f := NewTypewriter(nil).Next(); f.Text != "" || f.Wait != 2*time.Second {
		t.Fatalf("unexpected frame %+v", f)
	}
}
