package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Zachkp/portfolio/internal/clock"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/shell"
	"github.com/Zachkp/portfolio/internal/storage"
)

// Visitor data older than this is purged.
const visitorRetention = 12 * 30 * 24 * time.Hour

type Config struct {
	Portfolio *content.Portfolio
	Sections  []shell.Section
	// Store is optional; without it visits are not tracked and the admin
	// area is disabled.
	Store     *storage.DB
	Submitter contact.Submitter
	// Clean, when set, rewrites submitted forms before they are validated.
	Clean      func(contact.Form) contact.Form
	Clock      clock.Clock
	ResetAfter time.Duration

	AdminUsername string
	AdminPassword string
	// HashingSalt keys visitor IP hashes. When empty a random salt is used,
	// so unique visitor counts only hold within one process.
	HashingSalt string
}

type Server struct {
	cfg     Config
	engine  *gin.Engine
	reveals *reveal.Scheduler
	log     *logrus.Entry

	adminToken  string
	hashingSalt string

	streamsMu sync.Mutex
	streams   map[string]chan<- reveal.Event
}

func New(cfg Config) (*Server, error) {
	if cfg.Portfolio == nil {
		return nil, fmt.Errorf("server: portfolio content is required")
	}
	if cfg.Sections == nil {
		sections, err := shell.Sections()
		if err != nil {
			return nil, err
		}
		cfg.Sections = sections
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.ResetAfter <= 0 {
		cfg.ResetAfter = contact.DefaultResetAfter
	}
	if cfg.Submitter == nil {
		cfg.Submitter = &contact.Simulated{Clock: cfg.Clock}
	}

	s := &Server{
		cfg:     cfg,
		log:     logging.Component("server"),
		streams: make(map[string]chan<- reveal.Event),
	}
	s.reveals = reveal.NewScheduler(reveal.WithClock(cfg.Clock), reveal.WithSink(s.publish))
	var err error
	if s.adminToken, err = randomToken(); err != nil {
		return nil, err
	}
	s.hashingSalt = cfg.HashingSalt
	if s.hashingSalt == "" {
		if s.hashingSalt, err = randomToken(); err != nil {
			return nil, err
		}
	}
	s.engine = s.routes()
	return s, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	var r *gin.Engine
	if gin.Mode() == gin.ReleaseMode {
		r = gin.New()
		r.Use(gin.Recovery(), requestLogger(s.log))
	} else {
		r = gin.Default()
	}
	if s.cfg.Store != nil {
		r.Use(s.visitorTracking())
	}

	files := shell.Files()
	r.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", http.FS(files))
	})
	r.StaticFS("/static", http.FS(files))

	api := r.Group("/api")
	api.GET("/profile", s.handleProfile)
	api.GET("/about", s.handleAbout)
	api.GET("/internships", s.handleInternships)
	api.GET("/projects", s.handleProjects)
	api.GET("/contact-info", s.handleContactInfo)
	api.GET("/footer", s.handleFooter)
	api.GET("/sections", s.handleSections)
	api.GET("/sections/:id/reveal", s.handleReveal)
	api.POST("/contact", s.handleContact)

	if s.cfg.Store != nil {
		s.setupAdminRoutes(r)
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("portfolio server listening")

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		return err
	}
}

// publish routes a reveal event to the stream that owns its instance.
// Stream channels are buffered for every target so this never blocks.
func (s *Server) publish(e reveal.Event) {
	s.streamsMu.Lock()
	ch := s.streams[e.Instance]
	s.streamsMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
		s.log.WithField("instance", e.Instance).Warn("dropped reveal event")
	}
}

func (s *Server) subscribe(instance string, ch chan<- reveal.Event) {
	s.streamsMu.Lock()
	s.streams[instance] = ch
	s.streamsMu.Unlock()
}

func (s *Server) unsubscribe(instance string) {
	s.streamsMu.Lock()
	delete(s.streams, instance)
	s.streamsMu.Unlock()
}

// Close releases every pending reveal timer.
func (s *Server) Close() {
	s.reveals.Close()
}

// PurgeOldVisits applies the visitor retention window.
func (s *Server) PurgeOldVisits(ctx context.Context) {
	if s.cfg.Store == nil {
		return
	}
	n, err := s.cfg.Store.PurgeVisitorsBefore(ctx, s.cfg.Clock.Now().Add(-visitorRetention))
	if err != nil {
		s.log.WithError(err).Error("error cleaning up old visitor data")
		return
	}
	if n > 0 {
		s.log.WithField("removed", n).Info("privacy cleanup removed old visitor records")
	}
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("request")
	}
}
