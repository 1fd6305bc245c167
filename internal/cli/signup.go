package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// SignupCommand registers a new account against the remote user
// collection.
type SignupCommand struct {
	Username string
	Email    string
	Password string
}

func NewSignupCommand() *SignupCommand {
	return &SignupCommand{}
}

func (cmd *SignupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, minimum 8 characters (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s signup -username <name> -email <email> -password <password>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a new account.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return nil
}

func (cmd *SignupCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := d.auth.Signup(context.Background(), cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Printf("Account created for %s (%s). Log in with 'bookshelf login'.\n", user.Username, user.Email)
	return nil
}
