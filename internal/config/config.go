package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		Remote
		Session
		Auth
		Refresh
	}

	Remote struct {
		BaseURL          string
		TimeoutInSeconds int
	}
	Session struct {
		DatabasePath string
		KeyFilePath  string // Encryption key file; auto-generated if absent
	}
	Auth struct {
		BcryptCost int
	}
	Refresh struct {
		Enabled  bool
		Schedule string // Cron format: "*/5 * * * *" = every 5 minutes
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("api_base_url", "")
	v.SetDefault("http_timeout_in_seconds", 30)
	v.SetDefault("session_database_path", DefaultSessionDatabasePath)
	v.SetDefault("session_key_file", "") // ~/.bookshelf-session-key if empty
	v.SetDefault("auth_bcrypt_cost", 12) // bcrypt cost factor

	// Background refresh defaults
	v.SetDefault("refresh_enabled", false)
	v.SetDefault("refresh_schedule", "*/5 * * * *") // Every 5 minutes

	return &Config{
		Remote: Remote{
			BaseURL:          v.GetString("API_BASE_URL"),
			TimeoutInSeconds: v.GetInt("HTTP_TIMEOUT_IN_SECONDS"),
		},
		Session: Session{
			DatabasePath: v.GetString("SESSION_DATABASE_PATH"),
			KeyFilePath:  v.GetString("SESSION_KEY_FILE"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Refresh: Refresh{
			Enabled:  v.GetBool("REFRESH_ENABLED"),
			Schedule: v.GetString("REFRESH_SCHEDULE"),
		},
	}
}
