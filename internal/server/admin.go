// admin.go - privacy-conscious visitor tracking and the admin area
package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/storage"
)

const adminCookie = "admin_token"

// hashIP hashes an address with the server salt. Hashes are stable for as
// long as the salt is, see Config.HashingSalt.
func (s *Server) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + s.hashingSalt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// visitorTracking records page views with hashed addresses. Static files,
// API calls, the admin area and clients sending DNT are skipped.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			strings.HasPrefix(path, "/static/") ||
			strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/admin") ||
			strings.HasPrefix(path, "/favicon") {
			c.Next()
			return
		}
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		v := storage.Visit{
			HashedIP:  s.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: s.cfg.Clock.Now(),
		}
		if err := s.cfg.Store.RecordVisit(c.Request.Context(), v); err != nil {
			s.log.WithError(err).Warn("error recording visitor")
		}
		c.Next()
	}
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// credentials returns the configured admin login. Debug builds fall back to
// development defaults; release builds without a password disable login.
func (s *Server) credentials() (user, pass string, ok bool) {
	user, pass = s.cfg.AdminUsername, s.cfg.AdminPassword
	if user == "" {
		user = "admin"
	}
	if pass == "" {
		if gin.Mode() == gin.ReleaseMode {
			return "", "", false
		}
		pass = "admin123"
		s.log.Warn("using default admin password; set admin.password")
	}
	return user, pass, true
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.POST("/admin/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}
		user, pass, ok := s.credentials()
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin login disabled"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(req.Username), []byte(user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(req.Password), []byte(pass)) != 1 {
			s.log.WithField("from", s.hashIP(c.ClientIP())).Warn("failed admin login attempt")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		s.log.WithField("from", s.hashIP(c.ClientIP())).Info("admin login successful")
		c.JSON(http.StatusOK, gin.H{"message": "logged in"})
	})

	r.POST("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.cfg.Store.Stats(c.Request.Context(), s.cfg.Clock.Now())
		if err != nil {
			s.log.WithError(err).Error("error loading admin stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/api/visitors", func(c *gin.Context) {
		visits, err := s.cfg.Store.RecentVisits(c.Request.Context(), queryLimit(c, 200))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
			return
		}
		c.JSON(http.StatusOK, visits)
	})

	admin.GET("/api/messages", func(c *gin.Context) {
		msgs, err := s.cfg.Store.Messages(c.Request.Context(), queryLimit(c, 50))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, msgs)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		s.PurgeOldVisits(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete"})
	})
}

func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 || n > 1000 {
		return def
	}
	return n
}
