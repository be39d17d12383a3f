package config

import (
	"flag"
	"os"
	"time"

	"github.com/faktur-app/faktur/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend REST endpoint
//	-w string   websocket URL of the backend push channel
//	-f string   path to the local database file
//	-i int      websocket redial interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-f", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend server")
	fs.StringVar(&cfg.RealtimeEndpointAddr, "w", cfg.RealtimeEndpointAddr, "websocket URL of the push channel")
	fs.StringVar(&cfg.DatabaseFile, "f", cfg.DatabaseFile, "path to the local database file")
	redialInterval := fs.Int("i", int(cfg.RedialInterval.Seconds()), "websocket redial interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RedialInterval = time.Duration(*redialInterval) * time.Second
}
