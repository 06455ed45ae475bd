// migrate applies the embedded audit store migrations: go run ./cmd/migrate [-direction up|down] [-version].
package main

import (
	"flag"
	"fmt"
	"os"

	"custom-auth-extension/backend/internal/config"
	"custom-auth-extension/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", migrate.Up, "Migration direction: up or down")
	showVersion := flag.Bool("version", false, "Print the current schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}

	if !*showVersion {
		// Run treats "no change" as success.
		if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	version, dirty, err := migrate.Version(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate: version:", err)
		os.Exit(1)
	}
	fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
}
