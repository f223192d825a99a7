package web

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgNotFoundOrDenied = "not found or access denied"
	msgUnavailable      = "service temporarily unavailable, please try again"
	msgReadDegraded     = "content is temporarily unavailable"
)

// statusFor maps a service error to an HTTP status and a message that is
// safe to show to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "all fields are required"
	case errors.Is(err, common.ErrEmptyContent):
		return http.StatusBadRequest, "comment cannot be empty"
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "please log in"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrInfrastructure):
		return http.StatusServiceUnavailable, msgUnavailable
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func abortWithError(c *gin.Context, err error) {
	code, msg := statusFor(err)
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// abortWithPostError hides whether a post exists from callers who may not
// touch it.
func abortWithPostError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrForbidden) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msgNotFoundOrDenied})
		return
	}
	abortWithError(c, err)
}

func degraded(err error) bool {
	return errors.Is(err, common.ErrInfrastructure)
}
