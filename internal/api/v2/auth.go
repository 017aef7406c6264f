package api

import (
	"github.com/labstack/echo/v4"

	"github.com/noisewatch/noisewatch-go/internal/errors"
	"github.com/noisewatch/noisewatch-go/internal/security"
)

// initAuthRoutes registers login, logout and profile endpoints.
func (c *Controller) initAuthRoutes() {
	c.Group.POST("/auth/login", c.Login)
	c.Group.POST("/auth/logout", c.Logout)
	c.Group.GET("/auth/profile", c.Profile, c.sessions.RequireAuth)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userSummary is the identity payload returned by login and profile.
// The password hash never leaves the server.
type userSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Login verifies credentials, starts a session and records the login time.
func (c *Controller) Login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", 400)
	}
	if req.Username == "" || req.Password == "" {
		err := errors.ValidationError("username and password are required")
		return c.Error(ctx, err, "missing credentials")
	}

	user, err := c.DS.GetUserByUsername(req.Username)
	if err != nil || !security.CheckPassword(user.Password, req.Password) {
		if c.metrics != nil {
			c.metrics.HTTP.RecordAuthOperation("login", "failure")
		}
		authErr := errors.Newf("invalid username or password").
			Component("api").
			Category(errors.CategoryAuth).
			Build()
		return c.Error(ctx, authErr, "invalid credentials")
	}

	if err := c.sessions.SignIn(ctx, &user); err != nil {
		return c.Error(ctx, err, "failed to start session")
	}
	if err := c.DS.UpdateLastLogin(user.ID); err != nil {
		c.apiLogger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}
	if c.metrics != nil {
		c.metrics.HTTP.RecordAuthOperation("login", "success")
	}
	c.apiLogger.Info("user logged in", "user_id", user.ID, "username", user.Username)

	return c.Data(ctx, userSummary{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	})
}

// Logout ends the current session.
func (c *Controller) Logout(ctx echo.Context) error {
	if err := c.sessions.SignOut(ctx); err != nil {
		return c.Error(ctx, err, "failed to end session")
	}
	if c.metrics != nil {
		c.metrics.HTTP.RecordAuthOperation("logout", "success")
	}
	return c.Data(ctx, map[string]any{"logged_out": true})
}

// Profile returns the authenticated user's identity.
func (c *Controller) Profile(ctx echo.Context) error {
	sessionUser, ok := currentUser(ctx)
	if !ok {
		authErr := errors.Newf("no session user").
			Component("api").
			Category(errors.CategoryAuth).
			Build()
		return c.Error(ctx, authErr, "authentication required")
	}

	// Refresh from the store so profile reflects recent edits.
	user, err := c.DS.GetUser(sessionUser.ID)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch profile")
	}
	return c.Data(ctx, userSummary{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	})
}
