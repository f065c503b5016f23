// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned when an upload is not an accepted image.
var ErrUnsupportedImage = errors.New("only image files are allowed")

// extension -> MIME type
var allowed = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// sniffLen is how much of an upload is read for detection.
const sniffLen = 3072

// AllowedExtension reports whether name carries an accepted extension.
func AllowedExtension(name string) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Validate checks the declared filename and the leading bytes of the
// content. It returns the lower-case extension to store the file under.
func Validate(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowed[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedImage, ext)
	}

	mime := mimetype.Detect(head)
	if !mime.Is(want) {
		return "", fmt.Errorf("%w: %s content with %s extension", ErrUnsupportedImage, mime.String(), ext)
	}
	return ext, nil
}

// Sniff reads up to sniffLen bytes from r and validates them against
// filename. The returned reader replays the consumed bytes.
func Sniff(filename string, r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	ext, err := Validate(filename, head)
	if err != nil {
		return "", nil, err
	}
	return ext, io.MultiReader(bytes.NewReader(head), r), nil
}

// ContentType returns the MIME type for a stored blob name, or
// application/octet-stream.
func ContentType(name string) string {
	if t, ok := allowed[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}
