package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is the shape every CLI subcommand shares.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	args := os.Args[2:]

	commands := map[string]command{
		"signup":           cli.NewSignupCommand(),
		"login":            cli.NewLoginCommand(),
		"logout":           cli.NewLogoutCommand(),
		"whoami":           cli.NewWhoamiCommand(),
		"change-password":  cli.NewChangePasswordCommand(),
		"list":             cli.NewListCommand(),
		"add":              cli.NewAddCommand(),
		"update":           cli.NewUpdateCommand(),
		"toggle-status":    cli.NewToggleStatusCommand(),
		"toggle-favourite": cli.NewToggleFavouriteCommand(),
		"delete":           cli.NewDeleteCommand(),
		"watch":            cli.NewWatchCommand(),
		"mockstore":        cli.NewMockStoreCommand(),
	}

	switch name {
	case "-h", "--help", "help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("bookshelf %s (%s)\n", Version, Commit)
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Account:\n")
	fmt.Fprintf(os.Stderr, "  signup            Create a new account\n")
	fmt.Fprintf(os.Stderr, "  login             Log in and persist the session\n")
	fmt.Fprintf(os.Stderr, "  logout            Clear the persisted session\n")
	fmt.Fprintf(os.Stderr, "  whoami            Show the logged-in user's profile\n")
	fmt.Fprintf(os.Stderr, "  change-password   Update the account password\n\n")
	fmt.Fprintf(os.Stderr, "Collection:\n")
	fmt.Fprintf(os.Stderr, "  list              Show your books (-category all|reading|favourites)\n")
	fmt.Fprintf(os.Stderr, "  add               Add a book to the library or Reading Now\n")
	fmt.Fprintf(os.Stderr, "  update            Edit a book's title/author/genre\n")
	fmt.Fprintf(os.Stderr, "  toggle-status     Move a book between library and Reading Now\n")
	fmt.Fprintf(os.Stderr, "  toggle-favourite  Flip a book's favourite flag\n")
	fmt.Fprintf(os.Stderr, "  delete            Remove a book\n")
	fmt.Fprintf(os.Stderr, "  watch             Keep the collection fresh on a schedule\n\n")
	fmt.Fprintf(os.Stderr, "Development:\n")
	fmt.Fprintf(os.Stderr, "  mockstore         Serve an in-memory record store locally\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
