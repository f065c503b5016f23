// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Command gallery-backup manages gallery snapshots offline.

	gallery-backup create [-name label]
	gallery-backup list
	gallery-backup restore -id <id> [-yes]
	gallery-backup delete -id <id> [-yes]
	gallery-backup rotate [-prefix scheduled] [-keep 10]
	gallery-backup scheduled
	gallery-backup reset-likes
	gallery-backup check

It reads the same configuration as the server and loads the existing
dataset mirror. A missing or invalid mirror is an error; the command never
seeds default data. Run it while the server is stopped, or follow a restore
with a server restart, since the server keeps its own in-memory copy.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/gallery/internal/config"
	"github.com/tomtom215/gallery/internal/logging"
)

func main() {
	cfg, err := config.LoadForCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
