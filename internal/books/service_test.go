package books

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/recordstore"
	"github.com/mrlokans/bookshelf/internal/recordstore/storetest"
)

func setup(t *testing.T) (*Service, *storetest.Store) {
	t.Helper()
	store, server := storetest.NewServer()
	t.Cleanup(server.Close)
	return NewService(recordstore.NewClient(server.URL)), store
}

func seedBook(store *storetest.Store, key, userID, title string, status entities.BookStatus, favourite bool, createdAt time.Time) {
	store.Seed(BooksCollection, key, entities.Book{
		UserID:    userID,
		Title:     title,
		Author:    "Author",
		Genre:     "Genre",
		Status:    status,
		Favourite: favourite,
		CreatedAt: createdAt,
	})
}

func TestService_FetchCollection(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	// Empty remote collection: no data yet, not a fault.
	collection, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, collection)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	seedBook(store, "b1", "u1", "Dune", entities.BookStatusLibrary, false, base)
	seedBook(store, "b2", "u2", "Neuromancer", entities.BookStatusReading, true, base.Add(time.Minute))
	seedBook(store, "b3", "u1", "Hyperion", entities.BookStatusReading, false, base.Add(2*time.Minute))

	collection, err = svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, collection, 2)

	// Never another user's books, and always in insertion order.
	assert.Equal(t, "Dune", collection[0].Title)
	assert.Equal(t, "Hyperion", collection[1].Title)
	for _, b := range collection {
		assert.Equal(t, "u1", b.UserID)
		assert.NotEmpty(t, b.ID, "store key is attached as the identifier")
	}

	// The snapshot accessor returns the same sequence.
	assert.Equal(t, collection, svc.Books())
}

func TestService_AddBook_Validation(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		params  AddBookParams
		wantErr error
	}{
		{
			name:    "missing user",
			params:  AddBookParams{Title: "Dune", Author: "Herbert", Genre: "Sci-Fi"},
			wantErr: ErrUserRequired,
		},
		{
			name:    "missing title",
			params:  AddBookParams{UserID: "u1", Author: "Herbert", Genre: "Sci-Fi"},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "missing author",
			params:  AddBookParams{UserID: "u1", Title: "Dune", Genre: "Sci-Fi"},
			wantErr: ErrAuthorRequired,
		},
		{
			name:    "missing genre",
			params:  AddBookParams{UserID: "u1", Title: "Dune", Author: "Herbert"},
			wantErr: ErrGenreRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddBook(ctx, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Validation failures never reach the store.
	assert.Equal(t, 0, store.Count(BooksCollection))
}

func TestService_AddBook(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	added, err := svc.AddBook(ctx, AddBookParams{
		UserID: "u1",
		Title:  "Dune",
		Author: "Herbert",
		Genre:  "Sci-Fi",
		Status: entities.BookStatusReading,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.False(t, added.Favourite, "favourite defaults to false")
	assert.False(t, added.CreatedAt.IsZero())

	// The write is followed by a full refresh.
	collection := svc.Books()
	require.Len(t, collection, 1)
	assert.Equal(t, "Dune", collection[0].Title)
	assert.Equal(t, entities.BookStatusReading, collection[0].Status)
}

func TestService_AddBook_DefaultStatus(t *testing.T) {
	svc, _ := setup(t)

	added, err := svc.AddBook(context.Background(), AddBookParams{
		UserID: "u1",
		Title:  "Dune",
		Author: "Herbert",
		Genre:  "Sci-Fi",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusLibrary, added.Status)
}

func TestService_UpdateBook(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	added, err := svc.AddBook(ctx, AddBookParams{
		UserID: "u1", Title: "Dune", Author: "Herbert", Genre: "Sci-Fi",
	})
	require.NoError(t, err)

	edited := *added
	edited.Title = "Dune Messiah"
	require.NoError(t, svc.UpdateBook(ctx, edited))

	var stored entities.Book
	require.True(t, store.Record(BooksCollection, added.ID, &stored))
	assert.Equal(t, "Dune Messiah", stored.Title)
	assert.Equal(t, "Herbert", stored.Author)

	collection := svc.Books()
	require.Len(t, collection, 1)
	assert.Equal(t, "Dune Messiah", collection[0].Title)
}

func TestService_UpdateBook_RequiresID(t *testing.T) {
	svc, _ := setup(t)
	err := svc.UpdateBook(context.Background(), entities.Book{Title: "Dune"})
	assert.ErrorIs(t, err, ErrBookIDRequired)
}

func TestService_ToggleStatus_IsItsOwnInverse(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	added, err := svc.AddBook(ctx, AddBookParams{
		UserID: "u1", Title: "Dune", Author: "Herbert", Genre: "Sci-Fi",
	})
	require.NoError(t, err)
	require.Equal(t, entities.BookStatusLibrary, added.Status)

	require.NoError(t, svc.ToggleStatus(ctx, added.ID, entities.BookStatusLibrary))
	first, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, entities.BookStatusReading, first[0].Status)

	require.NoError(t, svc.ToggleStatus(ctx, added.ID, first[0].Status))
	second, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, entities.BookStatusLibrary, second[0].Status)
}

func TestService_ToggleStatus_PatchesOnlyStatus(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	added, err := svc.AddBook(ctx, AddBookParams{
		UserID: "u1", Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", PdfURL: "https://example.com/dune.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ToggleStatus(ctx, added.ID, entities.BookStatusLibrary))

	// Fields the toggle does not own survive.
	var stored entities.Book
	require.True(t, store.Record(BooksCollection, added.ID, &stored))
	assert.Equal(t, entities.BookStatusReading, stored.Status)
	assert.Equal(t, "Dune", stored.Title)
	assert.Equal(t, "https://example.com/dune.pdf", stored.PdfURL)
}

func TestService_ToggleFavourite_IsItsOwnInverse(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	added, err := svc.AddBook(ctx, AddBookParams{
		UserID: "u1", Title: "Dune", Author: "Herbert", Genre: "Sci-Fi",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ToggleFavourite(ctx, added.ID, false))
	first, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, first[0].Favourite)

	require.NoError(t, svc.ToggleFavourite(ctx, added.ID, first[0].Favourite))
	second, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.False(t, second[0].Favourite)
}

func TestService_DeleteBook(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	added, err := svc.AddBook(ctx, AddBookParams{
		UserID: "u1", Title: "Dune", Author: "Herbert", Genre: "Sci-Fi",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, added.ID))

	assert.Equal(t, 0, store.Count(BooksCollection))
	collection, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, collection)
}

func TestService_FailedMutationKeepsSnapshot(t *testing.T) {
	store, server := storetest.NewServer()
	svc := NewService(recordstore.NewClient(server.URL))
	ctx := context.Background()

	seedBook(store, "b1", "u1", "Dune", entities.BookStatusLibrary, false, time.Now().UTC())
	collection, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, collection, 1)

	// Remote goes away: the mutation fails as a single terminal
	// error and the previous snapshot stays authoritative.
	server.Close()

	err = svc.ToggleFavourite(ctx, "b1", false)
	require.Error(t, err)
	assert.True(t, recordstore.IsRemote(err))

	remaining := svc.Books()
	require.Len(t, remaining, 1)
	assert.Equal(t, "Dune", remaining[0].Title)
	assert.False(t, remaining[0].Favourite)
}

func TestService_LifecycleScenario(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	added, err := svc.AddBook(ctx, AddBookParams{
		UserID: "u1", Title: "Dune", Author: "Herbert", Genre: "Sci-Fi",
	})
	require.NoError(t, err)

	collection, err := svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, collection, 1)

	require.NoError(t, svc.ToggleFavourite(ctx, added.ID, false))
	favourites := Project(svc.Books(), CategoryFavourites)
	require.Len(t, favourites, 1)
	assert.Equal(t, "Dune", favourites[0].Title)

	require.NoError(t, svc.DeleteBook(ctx, added.ID))
	collection, err = svc.FetchCollection(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, collection)
}
