package security

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/noisewatch/noisewatch-go/internal/conf"
	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
)

const sessionName = "noisewatch-session"

// SessionUser is the authenticated identity stored in the session cookie.
type SessionUser struct {
	ID       uint
	Username string
	Name     string
	Role     string
}

// SessionManager signs users in and out and resolves the current user
// from the session cookie.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a session manager from the security settings.
func NewSessionManager(settings *conf.Settings) *SessionManager {
	store := sessions.NewCookieStore([]byte(settings.Security.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   settings.Security.SessionMaxAge,
		HttpOnly: true,
		Secure:   settings.Security.RedirectToHTTPS,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// SignIn stores the user's identity in the session cookie.
func (m *SessionManager) SignIn(c echo.Context, user *datastore.User) error {
	session, _ := m.store.Get(c.Request(), sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Values["name"] = user.Name
	session.Values["role"] = user.Role
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return errors.New(err).
			Component("security").
			Category(errors.CategoryHTTP).
			Context("operation", "session_save").
			Build()
	}
	return nil
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(c echo.Context) error {
	session, _ := m.store.Get(c.Request(), sessionName)
	session.Options.MaxAge = -1
	for key := range session.Values {
		delete(session.Values, key)
	}
	return session.Save(c.Request(), c.Response())
}

// CurrentUser returns the identity stored in the session, if any.
func (m *SessionManager) CurrentUser(c echo.Context) (*SessionUser, bool) {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return nil, false
	}
	id, ok := session.Values["user_id"].(uint)
	if !ok || id == 0 {
		return nil, false
	}
	user := &SessionUser{ID: id}
	user.Username, _ = session.Values["username"].(string)
	user.Name, _ = session.Values["name"].(string)
	user.Role, _ = session.Values["role"].(string)
	return user, true
}

// RequireAuth is echo middleware rejecting requests without a valid session.
func (m *SessionManager) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := m.CurrentUser(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "authentication required",
			})
		}
		c.Set("user", user)
		return next(c)
	}
}
