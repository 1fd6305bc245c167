package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/recordstore/storetest"
)

// MockStoreCommand runs the in-memory record store locally, for
// development without a remote backend.
type MockStoreCommand struct {
	Addr string
}

func NewMockStoreCommand() *MockStoreCommand {
	return &MockStoreCommand{}
}

func (cmd *MockStoreCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("mockstore", flag.ExitOnError)

	fs.StringVar(&cmd.Addr, "addr", "127.0.0.1:8188", "Address to listen on")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s mockstore [-addr <host:port>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Serve an in-memory record store. Point API_BASE_URL at it:\n")
		fmt.Fprintf(os.Stderr, "  API_BASE_URL=http://127.0.0.1:8188 %s list\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *MockStoreCommand) Run() error {
	store := storetest.New()
	fmt.Printf("Mock record store listening on %s (data is not persisted)\n", cmd.Addr)
	return store.Router().Run(cmd.Addr)
}
