// Package content holds the static copy of every portfolio section.
package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/collection"
)

//go:embed portfolio.yaml
var portfolioYAML []byte

// Bilingual is a line shown in both the native script and English.
type Bilingual struct {
	Native  string `yaml:"native" json:"native"`
	English string `yaml:"english" json:"english"`
}

type Profile struct {
	Name       string    `yaml:"name" json:"name"`
	NativeName string    `yaml:"native_name" json:"native_name"`
	Headline   string    `yaml:"headline" json:"headline"`
	Intro      string    `yaml:"intro" json:"intro"`
	Tagline    string    `yaml:"tagline" json:"tagline"`
	Greeting   Bilingual `yaml:"greeting" json:"greeting"`
	Roles      []string  `yaml:"roles" json:"roles"`
}

type Skill struct {
	Name       string `yaml:"name" json:"name"`
	Percentage int    `yaml:"percentage" json:"percentage"`
	Icon       string `yaml:"icon" json:"icon"`
}

type About struct {
	Paragraphs []string  `yaml:"paragraphs" json:"paragraphs"`
	Quote      Bilingual `yaml:"quote" json:"quote"`
	Skills     []Skill   `yaml:"skills" json:"skills"`
}

type Internship struct {
	ID          int      `yaml:"id" json:"id"`
	Company     string   `yaml:"company" json:"company"`
	Role        string   `yaml:"role" json:"role"`
	Duration    string   `yaml:"duration" json:"duration"`
	Description string   `yaml:"description" json:"description"`
	TechStack   []string `yaml:"tech_stack" json:"tech_stack"`
}

type Project struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Tags        []string `yaml:"tags" json:"tags"`
	GitHub      string   `yaml:"github" json:"github"`
	Live        string   `yaml:"live" json:"live"`
	Featured    bool     `yaml:"featured" json:"featured"`
}

func (p Project) RecordID() int          { return p.ID }
func (p Project) RecordCategory() string { return p.Category }
func (p Project) IsFeatured() bool       { return p.Featured }

type Link struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	Href  string `yaml:"href,omitempty" json:"href,omitempty"`
}

type Contact struct {
	Heading string    `yaml:"heading" json:"heading"`
	Quote   Bilingual `yaml:"quote" json:"quote"`
	Info    []Link    `yaml:"info" json:"info"`
	Social  []Link    `yaml:"social" json:"social"`
}

type Footer struct {
	Links []string `yaml:"links" json:"links"`
}

type Portfolio struct {
	Profile     Profile             `yaml:"profile" json:"profile"`
	About       About               `yaml:"about" json:"about"`
	Internships []Internship        `yaml:"internships" json:"internships"`
	Filters     []collection.Filter `yaml:"filters" json:"filters"`
	Projects    []Project           `yaml:"projects" json:"projects"`
	Contact     Contact             `yaml:"contact" json:"contact"`
	Footer      Footer              `yaml:"footer" json:"footer"`
}

// Load decodes the embedded portfolio document.
func Load() (*Portfolio, error) {
	return Parse(portfolioYAML)
}

// Parse decodes and checks a portfolio document.
func Parse(data []byte) (*Portfolio, error) {
	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Portfolio) check() error {
	if len(p.Profile.Roles) == 0 {
		return fmt.Errorf("portfolio: profile has no roles")
	}
	seen := make(map[int]bool, len(p.Internships))
	for _, in := range p.Internships {
		if seen[in.ID] {
			return fmt.Errorf("portfolio: duplicate internship id %d", in.ID)
		}
		seen[in.ID] = true
	}
	for _, s := range p.About.Skills {
		if s.Percentage < 0 || s.Percentage > 100 {
			return fmt.Errorf("portfolio: skill %q percentage %d out of range", s.Name, s.Percentage)
		}
	}
	if _, err := p.ProjectCollection(); err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}
	categories := make(map[string]bool, len(p.Filters))
	for _, f := range p.Filters {
		if f.Key != collection.All && f.Key != collection.Featured {
			categories[f.Key] = true
		}
	}
	for _, pr := range p.Projects {
		if !categories[pr.Category] {
			return fmt.Errorf("portfolio: project %d has undeclared category %q", pr.ID, pr.Category)
		}
	}
	return nil
}

// ProjectCollection returns a fresh filterable view of the projects.
func (p *Portfolio) ProjectCollection() (*collection.Collection[Project], error) {
	return collection.New(p.Projects, p.Filters)
}
