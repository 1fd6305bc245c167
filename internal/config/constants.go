package config

// Default paths
const (
	// DefaultSessionDatabasePath is the default path for the local session database
	DefaultSessionDatabasePath = "./bookshelf-session.db"
)
