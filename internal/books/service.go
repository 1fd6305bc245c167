// Package books manages a user's book collection against the remote
// record store and keeps the authoritative in-memory snapshot that the
// category projections are derived from.
package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// BooksCollection is the remote collection holding book records.
const BooksCollection = "books"

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrAuthorRequired = errors.New("author is required")
	ErrGenreRequired  = errors.New("genre is required")
	ErrUserRequired   = errors.New("book must belong to a user")
	ErrBookIDRequired = errors.New("book id is required")
)

// RecordStore is the subset of the remote record store the collection
// manager uses.
type RecordStore interface {
	List(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	Create(ctx context.Context, collection string, record any) (string, error)
	Replace(ctx context.Context, collection, key string, record any) error
	Patch(ctx context.Context, collection, key string, fields map[string]any) error
	Delete(ctx context.Context, collection, key string) error
}

// Service fetches and mutates a user's book collection. The in-memory
// snapshot is only ever replaced wholesale by a successful fetch; a
// failed mutation leaves the previous snapshot in place.
type Service struct {
	store RecordStore

	mu     sync.RWMutex
	userID string
	books  []entities.Book
}

// NewService creates a collection manager.
func NewService(store RecordStore) *Service {
	return &Service{store: store}
}

// AddBookParams are the caller-supplied fields for a new book. Status
// distinguishes "add to library" from "add to reading now"; both are
// the same operation.
type AddBookParams struct {
	UserID        string
	Title         string
	Author        string
	Genre         string
	PdfURL        string
	CoverImageURL string
	Status        entities.BookStatus
}

// FetchCollection retrieves the entire remote book collection, filters
// it client-side to the given user's records (the store has no
// server-side query), orders it by creation time, and replaces the
// in-memory snapshot. An empty or absent collection is "no data yet",
// not a fault.
func (s *Service) FetchCollection(ctx context.Context, userID string) ([]entities.Book, error) {
	records, err := s.store.List(ctx, BooksCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}

	owned := make([]entities.Book, 0, len(records))
	for key, raw := range records {
		var book entities.Book
		if err := json.Unmarshal(raw, &book); err != nil {
			return nil, fmt.Errorf("failed to decode book record %s: %w", key, err)
		}
		// The map key is the authoritative identifier.
		book.ID = key
		if book.UserID == userID {
			owned = append(owned, book)
		}
	}

	// Insertion order: creation time, store key as tiebreak.
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID < owned[j].ID
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})

	s.mu.Lock()
	s.userID = userID
	s.books = owned
	s.mu.Unlock()

	return copyBooks(owned), nil
}

// Books returns a copy of the current snapshot.
func (s *Service) Books() []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyBooks(s.books)
}

// AddBook writes a new record and then re-fetches the collection.
// Validation happens before any network call.
func (s *Service) AddBook(ctx context.Context, params AddBookParams) (*entities.Book, error) {
	if params.UserID == "" {
		return nil, ErrUserRequired
	}
	if params.Title == "" {
		return nil, ErrTitleRequired
	}
	if params.Author == "" {
		return nil, ErrAuthorRequired
	}
	if params.Genre == "" {
		return nil, ErrGenreRequired
	}

	status := params.Status
	if status == "" {
		status = entities.BookStatusLibrary
	}

	book := &entities.Book{
		UserID:        params.UserID,
		Title:         params.Title,
		Author:        params.Author,
		Genre:         params.Genre,
		PdfURL:        params.PdfURL,
		CoverImageURL: params.CoverImageURL,
		Status:        status,
		Favourite:     false,
		CreatedAt:     time.Now().UTC(),
	}

	key, err := s.store.Create(ctx, BooksCollection, book)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	book.ID = key

	if _, err := s.FetchCollection(ctx, params.UserID); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook replaces the entire record with the caller-supplied
// merged book, then re-fetches. Edits to title/author/genre go through
// here; the field toggles deliberately do not.
func (s *Service) UpdateBook(ctx context.Context, book entities.Book) error {
	if book.ID == "" {
		return ErrBookIDRequired
	}

	if err := s.store.Replace(ctx, BooksCollection, book.ID, &book); err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return s.refresh(ctx)
}

// ToggleStatus flips a book between the library and the Reading Now
// list with a partial update of only the status field, then
// re-fetches. The partial update avoids races on fields the toggle
// does not own.
func (s *Service) ToggleStatus(ctx context.Context, bookID string, currentStatus entities.BookStatus) error {
	if bookID == "" {
		return ErrBookIDRequired
	}

	next := currentStatus.Toggled()
	if err := s.store.Patch(ctx, BooksCollection, bookID, map[string]any{"status": next}); err != nil {
		return fmt.Errorf("failed to update book status: %w", err)
	}
	return s.refresh(ctx)
}

// ToggleFavourite flips the favourite flag with a partial update of
// only that field, then re-fetches.
func (s *Service) ToggleFavourite(ctx context.Context, bookID string, currentFavourite bool) error {
	if bookID == "" {
		return ErrBookIDRequired
	}

	if err := s.store.Patch(ctx, BooksCollection, bookID, map[string]any{"favourite": !currentFavourite}); err != nil {
		return fmt.Errorf("failed to update favourite: %w", err)
	}
	return s.refresh(ctx)
}

// DeleteBook removes the record, then re-fetches.
func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	if bookID == "" {
		return ErrBookIDRequired
	}

	if err := s.store.Delete(ctx, BooksCollection, bookID); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return s.refresh(ctx)
}

// refresh re-fetches the collection for the last fetched user. The
// write has already been acknowledged by the time this runs, so the
// read-back never races the mutation it follows.
func (s *Service) refresh(ctx context.Context) error {
	s.mu.RLock()
	userID := s.userID
	s.mu.RUnlock()

	if userID == "" {
		return nil
	}
	_, err := s.FetchCollection(ctx, userID)
	return err
}

func copyBooks(books []entities.Book) []entities.Book {
	out := make([]entities.Book, len(books))
	copy(out, books)
	return out
}
