// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "NoiseWatch")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/noisewatch.log")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("security.sessionsecret", "")
	viper.SetDefault("security.sessionmaxage", 86400)
	viper.SetDefault("security.redirecttohttps", false)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "noisewatch.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "noisewatch")
	viper.SetDefault("output.mysql.password", "noisewatch")
	viper.SetDefault("output.mysql.database", "noisewatch")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("dashboard.defaultlimit", 10)
	viper.SetDefault("dashboard.maxlimit", 1000)
	viper.SetDefault("dashboard.realtimewindowmin", 60)
	viper.SetDefault("dashboard.statscachettl", 30)

	viper.SetDefault("admin.username", "admin")
	viper.SetDefault("admin.password", "")
	viper.SetDefault("admin.name", "Administrator")
}
