package books

import "github.com/mrlokans/bookshelf/internal/entities"

// Category is one of the derived views over the book collection.
type Category string

const (
	CategoryAll        Category = "All"
	CategoryReadingNow Category = "Reading Now"
	CategoryFavourites Category = "Favourites"
)

// Project returns the subsequence of books belonging to the category,
// preserving input order. It is pure: no I/O, no mutation of the
// input, identical output for identical input.
func Project(books []entities.Book, category Category) []entities.Book {
	out := make([]entities.Book, 0, len(books))
	for _, book := range books {
		switch category {
		case CategoryReadingNow:
			if book.Status == entities.BookStatusReading {
				out = append(out, book)
			}
		case CategoryFavourites:
			if book.Favourite {
				out = append(out, book)
			}
		default:
			out = append(out, book)
		}
	}
	return out
}
