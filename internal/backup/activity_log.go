// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// LogEntry is one line of the activity log
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

var logLinePattern = regexp.MustCompile(`^\[(.*?)\]\s(.*)$`)

// ActivityLog is the human readable record of scheduled backup runs. Each
// line is "[<RFC 3339 timestamp>] <message>".
type ActivityLog struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewActivityLog returns a log appending to path. An empty path gives a
// log that discards writes and reads as empty.
func NewActivityLog(path string) *ActivityLog {
	return &ActivityLog{path: path, now: time.Now}
}

// Path returns the log file location
func (l *ActivityLog) Path() string {
	return l.path
}

// Append writes one line.
func (l *ActivityLog) Append(message string) error {
	if l == nil || l.path == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) //nolint:gosec // G304: configured path
	if err != nil {
		return fmt.Errorf("failed to open backup log: %w", err)
	}

	line := fmt.Sprintf("[%s] %s\n", l.now().UTC().Format(time.RFC3339Nano), strings.ReplaceAll(message, "\n", " "))
	_, err = f.WriteString(line)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write backup log: %w", err)
	}
	return nil
}

// Read parses the whole log. Lines without a timestamp keep only their
// message. A missing file reads as empty.
func (l *ActivityLog) Read() ([]LogEntry, error) {
	entries := []LogEntry{}
	if l == nil || l.path == "" {
		return entries, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path) //nolint:gosec // G304: configured path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to open backup log: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if match := logLinePattern.FindStringSubmatch(line); match != nil {
			entries = append(entries, LogEntry{Timestamp: match[1], Message: match[2]})
			continue
		}
		entries = append(entries, LogEntry{Message: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backup log: %w", err)
	}
	return entries, nil
}
