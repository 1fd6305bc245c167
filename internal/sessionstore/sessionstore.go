// Package sessionstore persists the authenticated user's session
// across process restarts. Values are encrypted at rest with
// AES-256-GCM and kept in a small SQLite key-value table.
package sessionstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/crypto"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "SESSION_ENCRYPTION_KEY"

	// DefaultKeyFileName is the default name for the key file
	DefaultKeyFileName = ".bookshelf-session-key"
)

// record is a single encrypted key-value row.
type record struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string
}

func (record) TableName() string {
	return "session_records"
}

// Store is the local session persistence layer.
type Store struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

// Config holds configuration for the session store
type Config struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is the base64-encoded 32-byte encryption key.
	// If empty, will try to load from environment or key file
	EncryptionKey string

	// KeyFilePath is the path to the encryption key file.
	// If empty, defaults to ~/.bookshelf-session-key
	KeyFilePath string
}

// New creates a session store with the given configuration.
func New(cfg Config) (*Store, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db, encryptor: encryptor}, nil
}

// resolveEncryptionKey determines the encryption key from various sources
func resolveEncryptionKey(cfg Config) (string, error) {
	// Priority 1: Explicitly provided key
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}

	// Priority 2: Environment variable
	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	// Priority 3: Key file
	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return string(data), nil
	}

	// Generate new key and save it with restricted permissions
	newKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}
	return newKey, nil
}

// Get returns the decrypted value stored under key, or an empty string
// if the key has never been set.
func (s *Store) Get(key string) (string, error) {
	var rec record
	err := s.db.First(&rec, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session record: %w", err)
	}
	return s.encryptor.Decrypt(rec.Value)
}

// Set stores an encrypted value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	encrypted, err := s.encryptor.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt session value: %w", err)
	}

	rec := record{Key: key, Value: encrypted}
	result := s.db.Where("key = ?", key).
		Assign(map[string]interface{}{"value": encrypted}).
		FirstOrCreate(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to save session record: %w", result.Error)
	}
	return nil
}

// Remove deletes the value stored under key. Removing an absent key is
// not an error.
func (s *Store) Remove(key string) error {
	result := s.db.Delete(&record{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to remove session record: %w", result.Error)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
