package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/dmitrijs2005/blogportal/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie   = "session"
	requestIDHeader = "X-Request-ID"
)

func (s *HTTPServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// loadSession decodes the session cookie, if any. A bad or expired cookie
// is dropped and the request continues anonymously.
func (s *HTTPServer) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := auth.ParseSessionToken(token, s.opts.SecretKey)
		if err != nil {
			s.logger.Debug(c.Request.Context(), "session cookie rejected", "error", err)
			s.clearSessionCookie(c)
			c.Next()
			return
		}

		setSession(c, sess)
		c.Next()
	}
}

func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireSession(sessionFrom(c)); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// requireAdmin re-reads the role from the store, so a demoted or deleted
// admin loses access with the next request.
func (s *HTTPServer) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		if err := auth.RequireSession(sess); err != nil {
			abortWithError(c, err)
			return
		}

		fresh, err := s.identity.Refresh(c.Request.Context(), sess)
		if err != nil {
			if errors.Is(err, common.ErrUnauthenticated) {
				s.clearSessionCookie(c)
			}
			abortWithError(c, err)
			return
		}
		if err := auth.RequireAdmin(fresh); err != nil {
			abortWithError(c, err)
			return
		}

		setSession(c, fresh)
		c.Next()
	}
}

func setSession(c *gin.Context, sess *auth.Session) {
	c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), sess))
}

func sessionFrom(c *gin.Context) *auth.Session {
	return auth.FromContext(c.Request.Context())
}

func (s *HTTPServer) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.opts.SessionTTL.Seconds()), "/", "", s.opts.SecureCookie, true)
}

func (s *HTTPServer) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.opts.SecureCookie, true)
}
