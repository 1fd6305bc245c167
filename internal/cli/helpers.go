// Package cli contains the thin command shell around the core: each
// command parses flags, invokes core operations, and prints results.
package cli

import (
	"fmt"
	"time"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/books"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/recordstore"
	"github.com/mrlokans/bookshelf/internal/sessionstore"
)

// deps bundles the wired core services a command operates on.
type deps struct {
	cfg      *config.Config
	sessions *sessionstore.Store
	auth     *auth.Service
	books    *books.Service
}

func buildDeps() (*deps, error) {
	cfg := config.NewConfig()
	if cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is not set")
	}

	sessions, err := sessionstore.New(sessionstore.Config{
		DatabasePath: cfg.Session.DatabasePath,
		KeyFilePath:  cfg.Session.KeyFilePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	store := recordstore.NewClientWithTimeout(
		cfg.Remote.BaseURL,
		time.Duration(cfg.Remote.TimeoutInSeconds)*time.Second,
	)

	return &deps{
		cfg:      cfg,
		sessions: sessions,
		auth:     auth.NewService(store, sessions, cfg.Auth.BcryptCost),
		books:    books.NewService(store),
	}, nil
}

func (d *deps) Close() {
	_ = d.sessions.Close()
}

// requireSession returns the logged-in user or an error telling the
// caller to log in first.
func (d *deps) requireSession() (*entities.User, error) {
	user, err := d.auth.CurrentSession()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("not logged in; run 'bookshelf login' first")
	}
	return user, nil
}

func printBooks(list []entities.Book) {
	if len(list) == 0 {
		fmt.Println("No books.")
		return
	}
	for _, b := range list {
		marker := " "
		if b.Favourite {
			marker = "*"
		}
		fmt.Printf("%s %-20s  %-30s by %-20s [%s] %s\n", marker, b.ID, b.Title, b.Author, b.Genre, b.Status)
	}
}
