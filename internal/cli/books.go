package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/bookshelf/internal/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// ListCommand fetches the collection and prints one of its category
// projections.
type ListCommand struct {
	Category string
}

func NewListCommand() *ListCommand {
	return &ListCommand{}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)

	fs.StringVar(&cmd.Category, "category", "all", "Category to show: all, reading, favourites")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list [-category all|reading|favourites]\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch strings.ToLower(cmd.Category) {
	case "all", "reading", "favourites":
	default:
		return fmt.Errorf("unknown category %q (want all, reading, or favourites)", cmd.Category)
	}
	return nil
}

func (cmd *ListCommand) category() books.Category {
	switch strings.ToLower(cmd.Category) {
	case "reading":
		return books.CategoryReadingNow
	case "favourites":
		return books.CategoryFavourites
	default:
		return books.CategoryAll
	}
}

func (cmd *ListCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := d.requireSession()
	if err != nil {
		return err
	}

	collection, err := d.books.FetchCollection(context.Background(), user.ID)
	if err != nil {
		return err
	}

	printBooks(books.Project(collection, cmd.category()))
	return nil
}

// AddCommand adds a book to the library or straight to Reading Now.
type AddCommand struct {
	Title         string
	Author        string
	Genre         string
	PdfURL        string
	CoverImageURL string
	Reading       bool
}

func NewAddCommand() *AddCommand {
	return &AddCommand{}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)

	fs.StringVar(&cmd.Title, "title", "", "Book title (required)")
	fs.StringVar(&cmd.Author, "author", "", "Book author (required)")
	fs.StringVar(&cmd.Genre, "genre", "", "Book genre (required)")
	fs.StringVar(&cmd.PdfURL, "pdf", "", "Optional PDF URL")
	fs.StringVar(&cmd.CoverImageURL, "cover", "", "Optional cover image URL")
	fs.BoolVar(&cmd.Reading, "reading", false, "Add straight to Reading Now instead of the library")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add -title <t> -author <a> -genre <g> [options]\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *AddCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := d.requireSession()
	if err != nil {
		return err
	}

	status := entities.BookStatusLibrary
	if cmd.Reading {
		status = entities.BookStatusReading
	}

	book, err := d.books.AddBook(context.Background(), books.AddBookParams{
		UserID:        user.ID,
		Title:         cmd.Title,
		Author:        cmd.Author,
		Genre:         cmd.Genre,
		PdfURL:        cmd.PdfURL,
		CoverImageURL: cmd.CoverImageURL,
		Status:        status,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added \"%s\" by %s (%s).\n", book.Title, book.Author, book.Status)
	return nil
}

// UpdateCommand edits title/author/genre of an existing book via a
// full-record replace.
type UpdateCommand struct {
	BookID string
	Title  string
	Author string
	Genre  string
}

func NewUpdateCommand() *UpdateCommand {
	return &UpdateCommand{}
}

func (cmd *UpdateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)

	fs.StringVar(&cmd.BookID, "id", "", "Book identifier (required)")
	fs.StringVar(&cmd.Title, "title", "", "New title (unchanged if empty)")
	fs.StringVar(&cmd.Author, "author", "", "New author (unchanged if empty)")
	fs.StringVar(&cmd.Genre, "genre", "", "New genre (unchanged if empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s update -id <key> [-title <t>] [-author <a>] [-genre <g>]\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.BookID == "" {
		return fmt.Errorf("required flag -id not provided")
	}
	return nil
}

func (cmd *UpdateCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	book, err := findBook(d, cmd.BookID)
	if err != nil {
		return err
	}

	if cmd.Title != "" {
		book.Title = cmd.Title
	}
	if cmd.Author != "" {
		book.Author = cmd.Author
	}
	if cmd.Genre != "" {
		book.Genre = cmd.Genre
	}

	if err := d.books.UpdateBook(context.Background(), *book); err != nil {
		return err
	}

	fmt.Println("Book updated.")
	return nil
}

// ToggleStatusCommand moves a book between the library and Reading Now.
type ToggleStatusCommand struct {
	BookID string
}

func NewToggleStatusCommand() *ToggleStatusCommand {
	return &ToggleStatusCommand{}
}

func (cmd *ToggleStatusCommand) ParseFlags(args []string) error {
	return parseBookIDFlag("toggle-status", args, &cmd.BookID)
}

func (cmd *ToggleStatusCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	book, err := findBook(d, cmd.BookID)
	if err != nil {
		return err
	}

	if err := d.books.ToggleStatus(context.Background(), book.ID, book.Status); err != nil {
		return err
	}

	fmt.Printf("\"%s\" is now %s.\n", book.Title, book.Status.Toggled())
	return nil
}

// ToggleFavouriteCommand flips a book's favourite flag.
type ToggleFavouriteCommand struct {
	BookID string
}

func NewToggleFavouriteCommand() *ToggleFavouriteCommand {
	return &ToggleFavouriteCommand{}
}

func (cmd *ToggleFavouriteCommand) ParseFlags(args []string) error {
	return parseBookIDFlag("toggle-favourite", args, &cmd.BookID)
}

func (cmd *ToggleFavouriteCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	book, err := findBook(d, cmd.BookID)
	if err != nil {
		return err
	}

	if err := d.books.ToggleFavourite(context.Background(), book.ID, book.Favourite); err != nil {
		return err
	}

	if book.Favourite {
		fmt.Printf("\"%s\" removed from favourites.\n", book.Title)
	} else {
		fmt.Printf("\"%s\" added to favourites.\n", book.Title)
	}
	return nil
}

// DeleteCommand removes a book from the collection.
type DeleteCommand struct {
	BookID string
}

func NewDeleteCommand() *DeleteCommand {
	return &DeleteCommand{}
}

func (cmd *DeleteCommand) ParseFlags(args []string) error {
	return parseBookIDFlag("delete", args, &cmd.BookID)
}

func (cmd *DeleteCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	book, err := findBook(d, cmd.BookID)
	if err != nil {
		return err
	}

	if err := d.books.DeleteBook(context.Background(), book.ID); err != nil {
		return err
	}

	fmt.Printf("\"%s\" removed.\n", book.Title)
	return nil
}

func parseBookIDFlag(name string, args []string, target *string) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(target, "id", "", "Book identifier (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s -id <key>\n\nOptions:\n", os.Args[0], name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *target == "" {
		return fmt.Errorf("required flag -id not provided")
	}
	return nil
}

// findBook fetches the logged-in user's collection and locates a book
// by its key, so toggles can pass the current field value.
func findBook(d *deps, bookID string) (*entities.Book, error) {
	user, err := d.requireSession()
	if err != nil {
		return nil, err
	}

	collection, err := d.books.FetchCollection(context.Background(), user.ID)
	if err != nil {
		return nil, err
	}

	for i := range collection {
		if collection[i].ID == bookID {
			return &collection[i], nil
		}
	}
	return nil, fmt.Errorf("no book with id %s in your collection", bookID)
}
