package web

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/dmitrijs2005/blogportal/internal/server/auth"
	"github.com/dmitrijs2005/blogportal/internal/server/models"
	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type commentRequest struct {
	Content string `json:"content"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func (s *HTTPServer) healthz(c *gin.Context) {
	if err := s.ping(c.Request.Context()); err != nil {
		s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	user, err := s.identity.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "message": "registration successful, please log in"})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	sess, err := s.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	token, err := auth.GenerateSessionToken(sess, s.opts.SecretKey, s.opts.SessionTTL)
	if err != nil {
		s.logger.Error(c.Request.Context(), "session token error", "error", err)
		abortWithError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": sess})
}

func (s *HTTPServer) logout(c *gin.Context) {
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *HTTPServer) listPosts(c *gin.Context) {
	list, err := s.content.ListPosts(c.Request.Context())
	if err != nil {
		if degraded(err) {
			c.JSON(http.StatusOK, gin.H{"posts": []*models.PostSummary{}, "notice": msgReadDegraded})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": list})
}

func (s *HTTPServer) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithPostError(c, common.ErrorNotFound)
		return
	}

	post, err := s.content.GetPost(c.Request.Context(), id, sessionFrom(c))
	if err != nil {
		if degraded(err) {
			c.JSON(http.StatusOK, gin.H{"post": nil, "notice": msgReadDegraded})
			return
		}
		abortWithPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (s *HTTPServer) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	post, err := s.content.CreatePost(c.Request.Context(), sessionFrom(c), req.Title, req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (s *HTTPServer) updatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithPostError(c, common.ErrorNotFound)
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	post, err := s.content.UpdatePost(c.Request.Context(), sessionFrom(c), id, req.Title, req.Content)
	if err != nil {
		abortWithPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (s *HTTPServer) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithPostError(c, common.ErrorNotFound)
		return
	}

	if err := s.content.DeletePost(c.Request.Context(), sessionFrom(c), id); err != nil {
		abortWithPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (s *HTTPServer) toggleLike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithPostError(c, common.ErrorNotFound)
		return
	}

	res, err := s.engagement.ToggleLike(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		abortWithPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) addComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithPostError(c, common.ErrorNotFound)
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	comment, err := s.content.AddComment(c.Request.Context(), sessionFrom(c), id, req.Content)
	if err != nil {
		abortWithPostError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (s *HTTPServer) dashboard(c *gin.Context) {
	d, err := s.content.Dashboard(c.Request.Context(), sessionFrom(c))
	if err != nil {
		if degraded(err) {
			c.JSON(http.StatusOK, gin.H{
				"posts":  []*models.PostSummary{},
				"stats":  &models.DashboardStats{},
				"notice": msgReadDegraded,
			})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *HTTPServer) adminOverview(c *gin.Context) {
	o, err := s.content.AdminOverview(c.Request.Context(), sessionFrom(c))
	if err != nil {
		if degraded(err) {
			c.JSON(http.StatusOK, gin.H{
				"users":    []*models.User{},
				"posts":    []*models.PostSummary{},
				"comments": []*models.CommentView{},
				"notice":   msgReadDegraded,
			})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *HTTPServer) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithError(c, common.ErrorNotFound)
		return
	}

	if err := s.identity.DeleteUser(c.Request.Context(), sessionFrom(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (s *HTTPServer) deleteComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithError(c, common.ErrorNotFound)
		return
	}

	if err := s.content.DeleteComment(c.Request.Context(), sessionFrom(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
