package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// LogoutCommand clears the persisted session.
type LogoutCommand struct{}

func NewLogoutCommand() *LogoutCommand {
	return &LogoutCommand{}
}

func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	return fs.Parse(args)
}

func (cmd *LogoutCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	d.auth.Logout()
	fmt.Println("Logged out.")
	return nil
}

// WhoamiCommand prints the logged-in user's profile, re-fetched from
// the remote store.
type WhoamiCommand struct{}

func NewWhoamiCommand() *WhoamiCommand {
	return &WhoamiCommand{}
}

func (cmd *WhoamiCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	return fs.Parse(args)
}

func (cmd *WhoamiCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := d.requireSession()
	if err != nil {
		return err
	}

	profile, err := d.auth.Profile(context.Background(), user.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Username: %s\nEmail:    %s\n", profile.Username, profile.Email)
	return nil
}

// ChangePasswordCommand updates the logged-in user's password.
type ChangePasswordCommand struct {
	NewPassword     string
	ConfirmPassword string
}

func NewChangePasswordCommand() *ChangePasswordCommand {
	return &ChangePasswordCommand{}
}

func (cmd *ChangePasswordCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)

	fs.StringVar(&cmd.NewPassword, "new", "", "New password (required)")
	fs.StringVar(&cmd.ConfirmPassword, "confirm", "", "Confirmation of the new password (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s change-password -new <password> -confirm <password>\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ChangePasswordCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	user, err := d.requireSession()
	if err != nil {
		return err
	}

	if err := d.auth.ChangePassword(context.Background(), user.ID, cmd.NewPassword, cmd.ConfirmPassword); err != nil {
		return err
	}

	fmt.Println("Password updated.")
	return nil
}
