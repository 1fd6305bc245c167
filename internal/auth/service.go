// Package auth validates credentials against the remote user
// collection and manages the locally persisted session.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// UsersCollection is the remote collection holding user records.
const UsersCollection = "users"

// SessionKey is the single fixed key the session is persisted under.
const SessionKey = "loggedInUser"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// RecordStore is the subset of the remote record store the auth
// manager uses.
type RecordStore interface {
	List(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	Get(ctx context.Context, collection, key string, v any) error
	Create(ctx context.Context, collection string, record any) (string, error)
	Patch(ctx context.Context, collection, key string, fields map[string]any) error
}

// SessionStore is the local key-value persistence the session lives in.
type SessionStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Service handles signup, login, logout and password changes.
type Service struct {
	store      RecordStore
	sessions   SessionStore
	bcryptCost int
}

// NewService creates a new authentication service.
func NewService(store RecordStore, sessions SessionStore, bcryptCost int) *Service {
	return &Service{
		store:      store,
		sessions:   sessions,
		bcryptCost: bcryptCost,
	}
}

// Signup creates a new user record. Validation happens before any
// network call; the duplicate-email check reads the full user
// collection since the store has no server-side index.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	records, err := s.store.List(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	for key, raw := range records {
		var existing entities.User
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, fmt.Errorf("failed to decode user record %s: %w", key, err)
		}
		if strings.EqualFold(existing.Email, email) {
			return nil, ErrEmailExists
		}
	}

	// Passwords are stored hashed, never as submitted.
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}

	key, err := s.store.Create(ctx, UsersCollection, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = key

	return user, nil
}

// Login authenticates against the remote user collection and persists
// the matched user as the session. The collection is fetched in full
// and indexed by lower-cased email; the unique-email invariant makes
// the single lookup equivalent to the scan it replaces.
func (s *Service) Login(ctx context.Context, email, password string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	records, err := s.store.List(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	byEmail := make(map[string]entities.User, len(records))
	for key, raw := range records {
		var user entities.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user record %s: %w", key, err)
		}
		user.ID = key
		byEmail[strings.ToLower(user.Email)] = user
	}

	user, ok := byEmail[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := CheckPassword(password, user.Password); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.saveSession(&user); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return &user, nil
}

// Logout clears the persisted session. It never fails toward the
// caller: logout must always succeed from the user's perspective, so
// persistence errors are logged and swallowed.
func (s *Service) Logout() {
	if err := s.sessions.Remove(SessionKey); err != nil {
		log.Printf("auth: failed to clear session: %v", err)
	}
}

// ChangePassword patches only the password field of the target user
// record. Unlike signup it does not re-check password length.
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return ErrPasswordRequired
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.Patch(ctx, UsersCollection, userID, map[string]any{"password": hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// CurrentSession reads the session store once and returns the
// persisted user, or nil when no session exists. Callers run this at
// boot to decide between an authenticated and an anonymous start.
func (s *Service) CurrentSession() (*entities.User, error) {
	value, err := s.sessions.Get(SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if value == "" {
		return nil, nil
	}

	var user entities.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &user, nil
}

// Profile fetches a single user record by key for display.
func (s *Service) Profile(ctx context.Context, userID string) (*entities.User, error) {
	var user entities.User
	if err := s.store.Get(ctx, UsersCollection, userID, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	user.ID = userID
	return &user, nil
}

func (s *Service) saveSession(user *entities.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.sessions.Set(SessionKey, string(data))
}
