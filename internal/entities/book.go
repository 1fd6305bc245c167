package entities

import "time"

// BookStatus describes where a book sits in the user's collection.
type BookStatus string

const (
	// BookStatusLibrary marks a book that is shelved but not being read.
	BookStatusLibrary BookStatus = "library"
	// BookStatusReading marks a book in the Reading Now list.
	BookStatusReading BookStatus = "reading"
)

// Toggled returns the opposite status.
func (s BookStatus) Toggled() BookStatus {
	if s == BookStatusReading {
		return BookStatusLibrary
	}
	return BookStatusReading
}

// Book is a record in the remote "books" collection. The ID is the
// store-assigned key, attached client-side after a fetch. Ownership is
// expressed through UserID and enforced only by client-side filtering;
// the remote store has no server-side query support.
type Book struct {
	ID            string     `json:"id,omitempty"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Genre         string     `json:"genre"`
	PdfURL        string     `json:"pdfUrl,omitempty"`
	CoverImageURL string     `json:"coverImageUrl,omitempty"`
	Status        BookStatus `json:"status"`
	Favourite     bool       `json:"favourite"`
	CreatedAt     time.Time  `json:"createdAt"`
}
