package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// LoginCommand authenticates and persists the session locally.
type LoginCommand struct {
	Email    string
	Password string
}

func NewLoginCommand() *LoginCommand {
	return &LoginCommand{}
}

func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Account password (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s login -email <email> -password <password>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Log in and persist the session. Subsequent commands use it\n")
		fmt.Fprintf(os.Stderr, "until 'bookshelf logout'.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return nil
}

func (cmd *LoginCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := d.auth.Login(context.Background(), cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Printf("Welcome back, %s!\n", user.Username)
	return nil
}
