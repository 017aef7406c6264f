package api

import (
	"github.com/labstack/echo/v4"

	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
	"github.com/noisewatch/noisewatch-go/internal/security"
)

// protectedUsername is the built-in administrator account. It can not be
// renamed or deleted through the API.
const protectedUsername = "admin"

// initUserRoutes registers account management endpoints. All of them
// require a session.
func (c *Controller) initUserRoutes() {
	group := c.Group.Group("/users", c.sessions.RequireAuth)
	group.GET("", c.ListUsers)
	group.POST("", c.CreateUser)
	group.POST("/change-password", c.ChangePassword)
	group.GET("/:id", c.GetUser)
	group.PUT("/:id", c.UpdateUser)
	group.DELETE("/:id", c.DeleteUser)
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// forbiddenAdminError is returned for any mutation of the protected account.
func forbiddenAdminError() error {
	return errors.Newf("the %s account can not be modified", protectedUsername).
		Component("api").
		Category(errors.CategoryForbidden).
		Build()
}

// ListUsers returns all accounts without password hashes.
func (c *Controller) ListUsers(ctx echo.Context) error {
	users, err := c.DS.GetAllUsers()
	if err != nil {
		return c.Error(ctx, err, "failed to fetch users")
	}
	return c.Data(ctx, users)
}

// GetUser returns a single account.
func (c *Controller) GetUser(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid user id")
	}

	user, err := c.DS.GetUser(id)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch user")
	}
	return c.Data(ctx, user)
}

// CreateUser adds an account with a freshly hashed password.
func (c *Controller) CreateUser(ctx echo.Context) error {
	var req userRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", 400)
	}
	if req.Username == "" || req.Name == "" {
		err := errors.ValidationError("username and name are required")
		return c.Error(ctx, err, "missing required fields")
	}
	if req.Role != "" && req.Role != datastore.RoleAdmin && req.Role != datastore.RoleUser {
		err := errors.ValidationError("role must be admin or user")
		return c.Error(ctx, err, "invalid role")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return c.Error(ctx, err, "invalid password")
	}

	user := datastore.User{
		Username: req.Username,
		Password: hash,
		Name:     req.Name,
		Role:     req.Role,
	}
	if user.Role == "" {
		user.Role = datastore.RoleUser
	}
	if err := c.DS.SaveUser(&user); err != nil {
		return c.Error(ctx, err, "failed to create user")
	}
	c.apiLogger.Info("user created", "user_id", user.ID, "username", user.Username)
	return c.Data(ctx, user)
}

// UpdateUser changes an account's name and role. The protected
// administrator account is rejected regardless of the caller's role.
func (c *Controller) UpdateUser(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid user id")
	}

	user, err := c.DS.GetUser(id)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch user")
	}
	if user.Username == protectedUsername {
		return c.Error(ctx, forbiddenAdminError(), "protected account")
	}

	var req userRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", 400)
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		if req.Role != datastore.RoleAdmin && req.Role != datastore.RoleUser {
			valErr := errors.ValidationError("role must be admin or user")
			return c.Error(ctx, valErr, "invalid role")
		}
		user.Role = req.Role
	}

	if err := c.DS.UpdateUser(&user); err != nil {
		return c.Error(ctx, err, "failed to update user")
	}
	return c.Data(ctx, user)
}

// DeleteUser removes an account. The protected administrator account is
// rejected regardless of the caller's role.
func (c *Controller) DeleteUser(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return c.Error(ctx, err, "invalid user id")
	}

	user, err := c.DS.GetUser(id)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch user")
	}
	if user.Username == protectedUsername {
		return c.Error(ctx, forbiddenAdminError(), "protected account")
	}

	if err := c.DS.DeleteUser(id); err != nil {
		return c.Error(ctx, err, "failed to delete user")
	}
	c.apiLogger.Info("user deleted", "user_id", id, "username", user.Username)
	return c.Data(ctx, map[string]any{"id": id})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword updates the session user's password after verifying the
// current one.
func (c *Controller) ChangePassword(ctx echo.Context) error {
	sessionUser, ok := currentUser(ctx)
	if !ok {
		authErr := errors.Newf("no session user").
			Component("api").
			Category(errors.CategoryAuth).
			Build()
		return c.Error(ctx, authErr, "authentication required")
	}

	var req changePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", 400)
	}

	user, err := c.DS.GetUser(sessionUser.ID)
	if err != nil {
		return c.Error(ctx, err, "failed to fetch user")
	}
	if !security.CheckPassword(user.Password, req.CurrentPassword) {
		authErr := errors.Newf("current password is incorrect").
			Component("api").
			Category(errors.CategoryAuth).
			Build()
		return c.Error(ctx, authErr, "wrong password")
	}

	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return c.Error(ctx, err, "invalid new password")
	}
	if err := c.DS.UpdateUserPassword(user.ID, hash); err != nil {
		return c.Error(ctx, err, "failed to change password")
	}
	c.apiLogger.Info("password changed", "user_id", user.ID)
	return c.Data(ctx, map[string]any{"changed": true})
}
