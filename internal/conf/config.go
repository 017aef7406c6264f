// config.go: settings struct and functions to load and save the application configuration.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig contains settings for a log file output.
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to log file
}

// MainSettings contains general application settings.
type MainSettings struct {
	Name string    // name of this node, can be used to identify the source of data
	Log  LogConfig // main log settings
}

// WebServerSettings contains settings for the HTTP server.
type WebServerSettings struct {
	Debug   bool   // true to enable debug mode
	Enabled bool   // true to enable web server
	Port    string // port for web server
}

// SecuritySettings contains settings for session authentication.
type SecuritySettings struct {
	SessionSecret   string // secret for session cookie signing
	SessionMaxAge   int    // session lifetime in seconds
	RedirectToHTTPS bool   // true to mark session cookies secure
}

// SQLiteSettings contains settings for the SQLite database backend.
type SQLiteSettings struct {
	Enabled bool   // true to enable SQLite
	Path    string // path to database file
}

// MySQLSettings contains settings for the MySQL database backend.
type MySQLSettings struct {
	Enabled  bool   // true to enable MySQL
	Username string // username for MySQL
	Password string // password for MySQL
	Database string // database name
	Host     string // host for MySQL
	Port     string // port for MySQL
}

// OutputSettings selects the database backend used by the datastore.
type OutputSettings struct {
	SQLite SQLiteSettings // SQLite database settings
	MySQL  MySQLSettings  // MySQL database settings
}

// DashboardSettings contains settings for the query endpoints backing the dashboard.
type DashboardSettings struct {
	DefaultLimit      int // default page size for history and alert listings
	MaxLimit          int // upper bound for requested page sizes
	RealtimeWindowMin int // lookback window in minutes for the realtime feed
	StatsCacheTTL     int // alert statistics cache TTL in seconds
}

// AdminSeedSettings describes the administrator account created on an empty database.
type AdminSeedSettings struct {
	Username string // login name of the seeded administrator
	Password string // initial password, only applied when the user is created
	Name     string // display name
}

// Settings contains all configuration options for the noise monitoring service.
type Settings struct {
	Debug bool // true to enable debug mode

	Main      MainSettings
	WebServer WebServerSettings
	Security  SecuritySettings
	Output    OutputSettings
	Dashboard DashboardSettings
	Admin     AdminSeedSettings

	Version   string `yaml:"-"` // release version, runtime value
	BuildDate string `yaml:"-"` // build date, runtime value
}

var (
	settingsInstance *Settings
	settingsMutex    sync.Mutex
)

// Load reads the configuration file and environment variables into a Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the config into settings
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Validate settings
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("noisewatch")
	viper.AutomaticEnv()

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	// Read configuration file
	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the current defaults to the first config path so the
// next run has an editable file.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(configPaths[0], 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	defaults := viper.AllSettings()
	out, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}

	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the list of directories searched for config.yaml,
// current working directory first.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error getting user home directory: %w", err)
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", "noisewatch"),
	}, nil
}

// Setting returns the loaded settings instance, or nil before Load has been called.
func Setting() *Settings {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	return settingsInstance
}
