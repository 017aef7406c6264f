// validate.go validates loaded settings before the application starts.
package conf

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
)

// ValidateSettings checks the loaded settings for configuration errors and
// fills in generated values where a safe default exists.
func ValidateSettings(settings *Settings) error {
	if err := validateOutput(&settings.Output); err != nil {
		return err
	}
	if err := validateWebServer(&settings.WebServer); err != nil {
		return err
	}
	if err := validateDashboard(&settings.Dashboard); err != nil {
		return err
	}

	// A missing session secret gets a random one, sessions then do not survive
	// a restart but authentication still works.
	if settings.Security.SessionSecret == "" {
		secret, err := generateSessionSecret()
		if err != nil {
			return fmt.Errorf("error generating session secret: %w", err)
		}
		settings.Security.SessionSecret = secret
	}
	if settings.Security.SessionMaxAge <= 0 {
		settings.Security.SessionMaxAge = 86400
	}

	return nil
}

func validateOutput(output *OutputSettings) error {
	if !output.SQLite.Enabled && !output.MySQL.Enabled {
		return fmt.Errorf("no database backend enabled, enable output.sqlite or output.mysql")
	}
	if output.SQLite.Enabled && output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path is required when SQLite is enabled")
	}
	if output.MySQL.Enabled {
		if output.MySQL.Host == "" || output.MySQL.Database == "" {
			return fmt.Errorf("output.mysql.host and output.mysql.database are required when MySQL is enabled")
		}
	}
	return nil
}

func validateWebServer(ws *WebServerSettings) error {
	if !ws.Enabled {
		return nil
	}
	port, err := strconv.Atoi(ws.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid webserver.port: %q", ws.Port)
	}
	return nil
}

func validateDashboard(d *DashboardSettings) error {
	if d.DefaultLimit <= 0 {
		d.DefaultLimit = 10
	}
	if d.MaxLimit <= 0 {
		d.MaxLimit = 1000
	}
	if d.DefaultLimit > d.MaxLimit {
		return fmt.Errorf("dashboard.defaultlimit %d exceeds dashboard.maxlimit %d", d.DefaultLimit, d.MaxLimit)
	}
	if d.RealtimeWindowMin <= 0 {
		d.RealtimeWindowMin = 60
	}
	if d.StatsCacheTTL < 0 {
		d.StatsCacheTTL = 0
	}
	return nil
}

func generateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
