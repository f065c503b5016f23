// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/tomtom215/gallery/internal/backup"
	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/config"
	"github.com/tomtom215/gallery/internal/dataset"
)

const (
	confirmPrompt = "WARNING: This will overwrite the current state. Continue? [y/N] "
	timeLayout    = "2006-01-02 15:04:05"
	defaultLabel  = "manual"
)

// cli holds what every subcommand works on.
type cli struct {
	cfg      *config.Config
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	store    *dataset.Store
	blobs    *blobstore.Store
	backups  *backup.Manager
	activity *backup.ActivityLog
}

type command struct {
	run  func(c *cli, ctx context.Context, args []string) error
	help string

	// skipLoad leaves the mirror unloaded; the command loads it itself.
	skipLoad bool
}

var commands = map[string]command{
	"create":      {run: (*cli).create, help: "create [-name label]         write a new snapshot"},
	"list":        {run: (*cli).list, help: "list                         list snapshots, newest first"},
	"restore":     {run: (*cli).restore, help: "restore -id <id> [-yes]      replace dataset and uploads"},
	"delete":      {run: (*cli).remove, help: "delete -id <id> [-yes]       delete a snapshot"},
	"rotate":      {run: (*cli).rotate, help: "rotate [-prefix p] [-keep n] keep the newest n matching snapshots"},
	"scheduled":   {run: (*cli).scheduled, help: "scheduled                    one scheduled backup and rotation"},
	"reset-likes": {run: (*cli).resetLikes, help: "reset-likes                  zero every like count"},
	"check":       {run: (*cli).check, help: "check                        report dataset and uploads consistency", skipLoad: true},
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, cfg *config.Config, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(errOut)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(errOut, "Unknown command %q\n\n", args[0])
		usage(errOut)
		return 2
	}

	c, err := newCLI(cfg, in, out, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if !cmd.skipLoad {
		if err := c.store.Load(); err != nil {
			fmt.Fprintf(errOut, "Error: failed to load dataset %s: %v\n", cfg.Storage.MirrorPath, err)
			return 1
		}
	}

	if err := cmd.run(c, ctx, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gallery-backup <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].help)
	}
}

func newCLI(cfg *config.Config, in io.Reader, out, errOut io.Writer) (*cli, error) {
	blobs, err := blobstore.New(cfg.Storage.UploadsDir)
	if err != nil {
		return nil, err
	}
	store := dataset.New(dataset.Options{MirrorPath: cfg.Storage.MirrorPath}, blobs)

	backupCfg, err := backup.ConfigFromApp(cfg.Backup)
	if err != nil {
		return nil, err
	}
	manager, err := backup.NewManager(backupCfg, store, blobs)
	if err != nil {
		return nil, err
	}

	return &cli{
		cfg:      cfg,
		in:       bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
		store:    store,
		blobs:    blobs,
		backups:  manager,
		activity: backup.NewActivityLog(backupCfg.LogFile),
	}, nil
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

// confirm asks before destructive operations unless skip is set. Anything
// but y or yes declines.
func (c *cli) confirm(skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	fmt.Fprint(c.out, confirmPrompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (c *cli) create(ctx context.Context, args []string) error {
	fs := c.flags("create")
	name := fs.String("name", defaultLabel, "label appended to the archive name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	archive, err := c.backups.Create(ctx, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Backup created successfully: %s\n", archive.Path)
	return nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	if err := c.flags("list").Parse(args); err != nil {
		return err
	}

	archives, err := c.backups.List(ctx)
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		fmt.Fprintln(c.out, "No backups found.")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILENAME\tCREATED\tSIZE\tFORMAT")
	for i, a := range archives {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			a.Filename,
			a.CreatedAt.Local().Format(timeLayout),
			backup.FormatBytes(a.Size),
			strings.ToUpper(a.Format.String()),
		)
	}
	return tw.Flush()
}

// idFlags parses -id and -yes shared by restore and delete.
func (c *cli) idFlags(name string, args []string) (string, bool, error) {
	fs := c.flags(name)
	id := fs.String("id", "", "backup id or filename")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}
	if *id == "" {
		return "", false, errors.New("-id is required")
	}
	return *id, *yes, nil
}

func (c *cli) restore(ctx context.Context, args []string) error {
	id, yes, err := c.idFlags("restore", args)
	if err != nil {
		return err
	}
	archive, err := c.backups.Find(ctx, id)
	if err != nil {
		return err
	}

	ok, err := c.confirm(yes)
	if err != nil || !ok {
		if err == nil {
			fmt.Fprintln(c.out, "Operation cancelled.")
		}
		return err
	}

	result, err := c.backups.Restore(ctx, archive.Filename)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Backup restored successfully from %s: %d users, %d photos, %d files\n",
		archive.Filename, result.Users, result.Photos, result.Blobs)
	return nil
}

func (c *cli) remove(ctx context.Context, args []string) error {
	id, yes, err := c.idFlags("delete", args)
	if err != nil {
		return err
	}
	archive, err := c.backups.Find(ctx, id)
	if err != nil {
		return err
	}

	ok, err := c.confirm(yes)
	if err != nil || !ok {
		if err == nil {
			fmt.Fprintln(c.out, "Operation cancelled.")
		}
		return err
	}

	if err := c.backups.Delete(ctx, archive.Filename); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Backup deleted: %s\n", archive.Filename)
	return nil
}

func (c *cli) rotate(ctx context.Context, args []string) error {
	fs := c.flags("rotate")
	prefix := fs.String("prefix", c.cfg.Backup.Schedule.Prefix, "archive name fragment to match")
	keep := fs.Int("keep", c.cfg.Backup.Schedule.MaxKept, "number of newest matches to keep")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deleted, err := c.backups.Rotate(ctx, *prefix, *keep)
	if err != nil {
		return err
	}
	for _, name := range deleted {
		fmt.Fprintf(c.out, "Deleted old backup: %s\n", name)
	}
	fmt.Fprintf(c.out, "Rotation complete: %d deleted\n", len(deleted))
	return nil
}

func (c *cli) scheduled(ctx context.Context, args []string) error {
	if err := c.flags("scheduled").Parse(args); err != nil {
		return err
	}
	if err := backup.NewScheduler(c.backups, c.activity).RunScheduled(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Scheduled backup completed successfully")
	return nil
}

func (c *cli) resetLikes(_ context.Context, args []string) error {
	if err := c.flags("reset-likes").Parse(args); err != nil {
		return err
	}
	photos, likes, records, err := c.store.ResetLikes()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Reset %d likes on %d photos, removed %d like records\n", likes, photos, records)
	return nil
}

func (c *cli) check(_ context.Context, args []string) error {
	if err := c.flags("check").Parse(args); err != nil {
		return err
	}

	mirror := c.cfg.Storage.MirrorPath
	fmt.Fprintf(c.out, "Dataset: %s\n", mirror)
	info, err := os.Stat(mirror)
	if err != nil {
		fmt.Fprintln(c.out, "  exists: no")
		return fmt.Errorf("dataset mirror: %w", err)
	}
	fmt.Fprintln(c.out, "  exists: yes")
	fmt.Fprintf(c.out, "  size: %s\n", backup.FormatBytes(info.Size()))
	fmt.Fprintf(c.out, "  modified: %s\n", info.ModTime().Local().Format(timeLayout))

	if err := c.store.Load(); err != nil {
		return fmt.Errorf("dataset mirror: %w", err)
	}

	users := c.store.Users()
	photos := c.store.Photos()
	fmt.Fprintf(c.out, "  users: %d\n", len(users))
	fmt.Fprintf(c.out, "  photos: %d\n", len(photos))

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for _, p := range photos {
		owner, ok := names[p.UserID]
		if !ok {
			owner = "unknown user " + p.UserID
		}
		fmt.Fprintf(c.out, "    %s (uploaded by %s)\n", p.Filename, owner)
	}

	entries, err := c.blobs.List()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Uploads: %s (%d files)\n", c.blobs.Dir(), len(entries))
	for _, e := range entries {
		fmt.Fprintf(c.out, "    %s %s\n", e.Name, backup.FormatBytes(e.Size))
	}

	missing := c.store.MissingBlobs()
	if len(missing) == 0 {
		fmt.Fprintln(c.out, "All photo files present.")
		return nil
	}
	fmt.Fprintf(c.out, "Missing files (%d):\n", len(missing))
	for _, p := range missing {
		fmt.Fprintf(c.out, "    %s (photo %s)\n", p.Filename, p.ID)
	}
	return nil
}
