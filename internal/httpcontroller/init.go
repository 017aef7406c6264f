package httpcontroller

import (
	"github.com/noisewatch/noisewatch-go/internal/datastore"
	"github.com/noisewatch/noisewatch-go/internal/errors"
	"github.com/noisewatch/noisewatch-go/internal/logging"
	"github.com/noisewatch/noisewatch-go/internal/security"
)

// EnsureAdminUser seeds the administrator account when the user table is
// empty, so a fresh install can log in with the configured credentials.
func (s *Server) EnsureAdminUser() error {
	count, err := s.DS.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := s.Settings.Admin
	if admin.Username == "" || admin.Password == "" {
		return errors.Newf("admin username and password must be configured to seed the first account").
			Component("httpcontroller").
			Category(errors.CategoryConfiguration).
			Build()
	}

	hash, err := security.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	user := datastore.User{
		Username: admin.Username,
		Password: hash,
		Name:     admin.Name,
		Role:     datastore.RoleAdmin,
	}
	if user.Name == "" {
		user.Name = "Administrator"
	}
	if err := s.DS.SaveUser(&user); err != nil {
		return err
	}

	logging.ForService("httpcontroller").Info("seeded administrator account",
		"username", user.Username)
	return nil
}
