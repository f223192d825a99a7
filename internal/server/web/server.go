// Package web exposes the portal services as a JSON API over HTTP (gin).
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/blogportal/internal/logging"
	"github.com/dmitrijs2005/blogportal/internal/server/auth"
	"github.com/dmitrijs2005/blogportal/internal/server/models"
	"github.com/dmitrijs2005/blogportal/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Identity is the account side of the API.
type Identity interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Refresh(ctx context.Context, sess *auth.Session) (*auth.Session, error)
	DeleteUser(ctx context.Context, sess *auth.Session, userID int64) error
}

// Content covers posts, comments and the read pages built from them.
type Content interface {
	ListPosts(ctx context.Context) ([]*models.PostSummary, error)
	GetPost(ctx context.Context, id int64, sess *auth.Session) (*models.PostDetail, error)
	CreatePost(ctx context.Context, sess *auth.Session, title, content string) (*models.Post, error)
	UpdatePost(ctx context.Context, sess *auth.Session, id int64, title, content string) (*models.Post, error)
	DeletePost(ctx context.Context, sess *auth.Session, id int64) error
	AddComment(ctx context.Context, sess *auth.Session, postID int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, sess *auth.Session, id int64) error
	Dashboard(ctx context.Context, sess *auth.Session) (*services.Dashboard, error)
	AdminOverview(ctx context.Context, sess *auth.Session) (*services.AdminOverview, error)
}

type Engagement interface {
	ToggleLike(ctx context.Context, sess *auth.Session, postID int64) (*models.LikeResult, error)
}

// Pinger reports whether the store is reachable.
type Pinger func(ctx context.Context) error

// Options are the transport settings of the HTTP server.
type Options struct {
	Address      string
	SecretKey    []byte
	SessionTTL   time.Duration
	CORSOrigins  []string
	SecureCookie bool
}

type HTTPServer struct {
	opts       Options
	identity   Identity
	content    Content
	engagement Engagement
	ping       Pinger
	logger     logging.Logger
}

func NewHTTPServer(opts Options, l logging.Logger, id Identity, ct Content, en Engagement, ping Pinger) *HTTPServer {
	return &HTTPServer{
		opts:       opts,
		identity:   id,
		content:    ct,
		engagement: en,
		ping:       ping,
		logger:     l.With("module", "http_server"),
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), s.loadSession())

	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.GET("/posts", s.listPosts)
	api.GET("/posts/:id", s.getPost)
	api.POST("/signup", s.signup)
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)

	member := api.Group("/")
	member.Use(requireSession())
	member.GET("/dashboard", s.dashboard)
	member.POST("/posts", s.createPost)
	member.PUT("/posts/:id", s.updatePost)
	member.DELETE("/posts/:id", s.deletePost)
	member.POST("/posts/:id/like", s.toggleLike)
	member.POST("/posts/:id/comments", s.addComment)

	admin := api.Group("/admin")
	admin.Use(s.requireAdmin())
	admin.GET("", s.adminOverview)
	admin.DELETE("/users/:id", s.deleteUser)
	admin.DELETE("/comments/:id", s.deleteComment)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
