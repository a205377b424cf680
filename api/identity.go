package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fptsbe/fleetengine-backend/internal/middleware"
	"github.com/fptsbe/fleetengine-backend/user"
)

const userKey = "current_user"

// identity resolves the authenticated subject to an account row, registering
// new subjects as students on first sight.
func (a *API) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLogger(c)

		sub, ok := middleware.GetSubject(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		u, err := a.repos.Users.GetUserBySubject(c, sub)
		if errors.Is(err, user.ErrNotFound) {
			u, err = a.repos.Users.CreateUser(c, sub)
			if err == nil {
				a.syncProfile(c, sub)
			}
		}
		if err != nil {
			logger.Error("failed to resolve user", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Set(userKey, *u)
		c.Next()
	}
}

// syncProfile pulls name and email from the identity provider on first login.
// Best effort: a failed fetch leaves the profile empty, it does not fail the
// request.
func (a *API) syncProfile(c *gin.Context, sub string) {
	if a.idp == nil {
		return
	}
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		return
	}

	info, err := a.idp.GetUserInfo(c, token)
	if err != nil {
		middleware.GetLogger(c).Info("profile sync skipped", "error", err)
		return
	}
	if err := a.repos.Users.UpdateProfile(c, sub, info.Email, info.Name); err != nil {
		middleware.GetLogger(c).Error("failed to store profile", "error", err)
	}
}

func currentUser(c *gin.Context) user.User {
	return c.MustGet(userKey).(user.User)
}

// requireRole gates plain CRUD endpoints. Lifecycle transitions carry their
// own permission table; this is only for the read/admin surfaces around them.
func (a *API) requireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
