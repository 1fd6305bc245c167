package books

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func sample() []entities.Book {
	return []entities.Book{
		{ID: "b1", Title: "Dune", Status: entities.BookStatusLibrary, Favourite: true},
		{ID: "b2", Title: "Neuromancer", Status: entities.BookStatusReading, Favourite: false},
		{ID: "b3", Title: "Hyperion", Status: entities.BookStatusReading, Favourite: true},
		{ID: "b4", Title: "Solaris", Status: entities.BookStatusLibrary, Favourite: false},
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantIDs  []string
	}{
		{name: "all", category: CategoryAll, wantIDs: []string{"b1", "b2", "b3", "b4"}},
		{name: "reading now", category: CategoryReadingNow, wantIDs: []string{"b2", "b3"}},
		{name: "favourites", category: CategoryFavourites, wantIDs: []string{"b1", "b3"}},
		{name: "unknown category falls back to all", category: Category("x"), wantIDs: []string{"b1", "b2", "b3", "b4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(sample(), tt.category)
			ids := make([]string, 0, len(got))
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	books := sample()
	Project(books, CategoryFavourites)
	assert.Equal(t, sample(), books)
}

func TestProject_Empty(t *testing.T) {
	assert.Empty(t, Project(nil, CategoryAll))
	assert.Empty(t, Project([]entities.Book{}, CategoryReadingNow))
}

func TestProject_Deterministic(t *testing.T) {
	books := sample()
	assert.Equal(t, Project(books, CategoryReadingNow), Project(books, CategoryReadingNow))
}
