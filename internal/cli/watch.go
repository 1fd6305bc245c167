package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/bookshelf/internal/scheduler"
)

// WatchCommand runs until interrupted, re-fetching the logged-in
// user's collection on the configured schedule so a long-lived
// invocation stays fresh the way the mobile client did on every
// screen focus.
type WatchCommand struct{}

func NewWatchCommand() *WatchCommand {
	return &WatchCommand{}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Keep the collection fresh on the REFRESH_SCHEDULE cron\n")
		fmt.Fprintf(os.Stderr, "schedule until interrupted.\n")
	}

	return fs.Parse(args)
}

func (cmd *WatchCommand) Run() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if _, err := d.requireSession(); err != nil {
		return err
	}

	cfg := d.cfg.Refresh
	cfg.Enabled = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewRefreshScheduler(d.books, d.auth.CurrentSession, cfg)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	sched.RunNow()
	if next := sched.NextRunTime(); next != nil {
		fmt.Printf("Watching; next refresh at %s. Ctrl-C to stop.\n", next.Format("15:04:05"))
	}

	<-ctx.Done()
	fmt.Println("\nStopping.")
	return nil
}
