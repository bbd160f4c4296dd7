package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Zachkp/portfolio/internal/collection"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/shell"
)

const (
	successMessage = "Thank you! Your message has been sent successfully."
	errorMessage   = "Sorry, there was an error sending your message. Please try again."
)

type typeFrame struct {
	Text   string `json:"text"`
	WaitMs int64  `json:"wait_ms"`
}

type profileView struct {
	content.Profile
	Typewriter []typeFrame `json:"typewriter"`
}

// handleProfile serves the hero copy along with one cycle of typewriter
// frames over the roles. The client loops the cycle.
func (s *Server) handleProfile(c *gin.Context) {
	p := s.cfg.Portfolio.Profile
	view := profileView{Profile: p, Typewriter: []typeFrame{}}
	for _, f := range content.NewTypewriter(p.Roles).Cycle() {
		view.Typewriter = append(view.Typewriter, typeFrame{Text: f.Text, WaitMs: f.Wait.Milliseconds()})
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleAbout(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg.Portfolio.About)
}

func (s *Server) handleInternships(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg.Portfolio.Internships)
}

func (s *Server) handleContactInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg.Portfolio.Contact)
}

func (s *Server) handleFooter(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"links":       s.cfg.Portfolio.Footer.Links,
		"native_name": s.cfg.Portfolio.Profile.NativeName,
		"tagline":     s.cfg.Portfolio.Profile.Tagline,
	})
}

type projectsView struct {
	Filter   string              `json:"filter"`
	Filters  []collection.Filter `json:"filters"`
	Projects []content.Project   `json:"projects"`
	// Unknown echoes a requested key that is not a declared filter.
	Unknown string `json:"unknown,omitempty"`
}

// handleProjects serves the projects visible under ?filter=, defaulting to
// "all". Keys outside the declared filters select nothing and leave the
// active filter as it was.
func (s *Server) handleProjects(c *gin.Context) {
	projects, err := s.cfg.Portfolio.ProjectCollection()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	key := c.DefaultQuery("filter", collection.All)
	view := projectsView{Filters: projects.Filters()}
	if projects.Select(key) {
		view.Projects = projects.Current()
	} else {
		view.Projects = projects.View(key)
		view.Unknown = key
	}
	view.Filter = projects.Active()
	c.JSON(http.StatusOK, view)
}

type sectionPlan struct {
	ID        string  `json:"id"`
	Threshold float64 `json:"threshold"`
	StepMs    int64   `json:"step_ms"`
	DelaysMs  []int64 `json:"delays_ms"`
}

func (s *Server) handleSections(c *gin.Context) {
	plans := make([]sectionPlan, 0, len(s.cfg.Sections))
	for _, sec := range s.cfg.Sections {
		p := sectionPlan{ID: sec.ID, Threshold: sec.Threshold, StepMs: sec.Step.Milliseconds(), DelaysMs: []int64{}}
		for _, d := range reveal.Delays(sec.Targets(), sec.Step) {
			p.DelaysMs = append(p.DelaysMs, d.Milliseconds())
		}
		plans = append(plans, p)
	}
	c.JSON(http.StatusOK, plans)
}

// handleReveal streams the staggered reveals of one section instance. The
// client opens the stream from its own intersection callback, so opening it
// counts as the section entering the viewport. Closing it tears the
// instance down along with any reveals still pending.
func (s *Server) handleReveal(c *gin.Context) {
	sec, ok := shell.Find(s.cfg.Sections, c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown section"})
		return
	}

	n := sec.Targets()
	events := make(chan reveal.Event, n)
	instance := sec.ID + "-" + uuid.NewString()
	s.subscribe(instance, events)
	defer s.unsubscribe(instance)

	obs, err := s.reveals.Register(instance, sec.Container(nil),
		reveal.Options{Threshold: sec.Threshold, Step: sec.Step})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	defer obs.Teardown()
	opened := s.cfg.Clock.Now()
	obs.Intersect(1)

	sent := 0
	c.Stream(func(w io.Writer) bool {
		if sent == n {
			c.SSEvent("done", gin.H{"instance": instance, "revealed": sent})
			return false
		}
		select {
		case e := <-events:
			c.SSEvent("reveal", gin.H{"index": e.Index, "delay_ms": e.At.Sub(opened).Milliseconds()})
			sent++
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) handleContact(c *gin.Context) {
	var f contact.Form
	if err := c.ShouldBind(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form"})
		return
	}
	if s.cfg.Clean != nil {
		f = s.cfg.Clean(f)
	}

	m := contact.NewMachine(contact.Config{
		Submitter:  s.cfg.Submitter,
		Clock:      s.cfg.Clock,
		ResetAfter: s.cfg.ResetAfter,
	})
	defer m.Close()
	if err := m.Fill(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	done, err := m.Submit(c.Request.Context())
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": contact.Idle,
			"field":  verr.Field,
			"error":  verr.Message,
		})
		return
	case errors.Is(err, contact.ErrNotIdle):
		c.JSON(http.StatusConflict, gin.H{"status": m.Status(), "error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	outcome, ok := <-done
	if !ok {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	resetMs := s.cfg.ResetAfter.Milliseconds()
	if outcome == contact.Error {
		c.JSON(http.StatusBadGateway, gin.H{
			"status":         outcome,
			"message":        errorMessage,
			"reset_after_ms": resetMs,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         outcome,
		"message":        successMessage,
		"reset_after_ms": resetMs,
	})
}
