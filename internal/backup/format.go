// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Format is an archive container
type Format string

const (
	// FormatZip is the legacy container. Still read and writable.
	FormatZip Format = "zip"
	// FormatTarGzip is a gzip-compressed tarball
	FormatTarGzip Format = "tar.gz"
	// FormatTarZstd is a zstd-compressed tarball, the default
	FormatTarZstd Format = "tar.zst"
)

// DefaultFormat is used when no format is configured
const DefaultFormat = FormatTarZstd

// formatSpecs maps each format to its file extension. Longer extensions are
// matched first by FormatFromName.
var formatSpecs = map[Format]string{
	FormatZip:     ".zip",
	FormatTarGzip: ".tar.gz",
	FormatTarZstd: ".tar.zst",
}

var formatsByMatchOrder = []Format{FormatTarZstd, FormatTarGzip, FormatZip}

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatZip, FormatTarGzip, FormatTarZstd}
}

// ParseFormat parses a configured format name. Empty means DefaultFormat.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return DefaultFormat, nil
	}
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	if _, ok := formatSpecs[f]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
	}
	return f, nil
}

// FormatFromName returns the format implied by a filename's extension.
func FormatFromName(name string) (Format, error) {
	lower := strings.ToLower(name)
	for _, f := range formatsByMatchOrder {
		if strings.HasSuffix(lower, formatSpecs[f]) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string {
	return formatSpecs[f]
}

func (f Format) String() string {
	return string(f)
}

// trimExt strips the format extension from name.
func trimExt(name string, f Format) string {
	return name[:len(name)-len(f.Ext())]
}

// archiveWriters holds the writers needed for creating an archive. The
// underlying file is not among the closers; the caller syncs it after the
// compression layers are flushed.
type archiveWriters struct {
	tarWriter *tar.Writer
	zipWriter *zip.Writer
	closers   []io.Closer
}

// Close closes all writers in reverse order, returning the first error encountered
func (aw *archiveWriters) Close() error {
	var firstErr error
	for i := len(aw.closers) - 1; i >= 0; i-- {
		if err := aw.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// setupArchiveWriters stacks the compression and container writers for
// format on top of out, each at its strongest setting.
func setupArchiveWriters(out io.Writer, format Format) (*archiveWriters, error) {
	aw := &archiveWriters{}

	switch format {
	case FormatZip:
		zw := zip.NewWriter(out)
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, flate.BestCompression)
		})
		aw.zipWriter = zw
		aw.closers = append(aw.closers, zw)
		return aw, nil

	case FormatTarGzip:
		gzWriter, err := gzip.NewWriterLevel(out, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		aw.closers = append(aw.closers, gzWriter)
		aw.tarWriter = tar.NewWriter(gzWriter)

	case FormatTarZstd:
		zstdWriter, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		aw.closers = append(aw.closers, zstdWriter)
		aw.tarWriter = tar.NewWriter(zstdWriter)

	default:
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}

	aw.closers = append(aw.closers, aw.tarWriter)
	return aw, nil
}

// addDir writes a directory entry. name must end in '/'.
func (aw *archiveWriters) addDir(name string, modTime time.Time) error {
	if aw.zipWriter != nil {
		_, err := aw.zipWriter.CreateHeader(&zip.FileHeader{Name: name, Modified: modTime})
		return err
	}
	return aw.tarWriter.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     name,
		Mode:     0o750,
		ModTime:  modTime,
	})
}

// addBytes writes an in-memory entry.
func (aw *archiveWriters) addBytes(name string, data []byte, modTime time.Time) error {
	if aw.zipWriter != nil {
		w, err := aw.zipWriter.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modTime,
		})
		if err != nil {
			return fmt.Errorf("failed to write %s header: %w", name, err)
		}
		_, err = w.Write(data)
		return err
	}

	header := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0o640,
		ModTime: modTime,
	}
	if err := aw.tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if _, err := aw.tarWriter.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// addFile copies srcPath into the archive as destPath.
//
//nolint:gosec // G304: srcPath comes from the blob store listing
func (aw *archiveWriters) addFile(srcPath, destPath string) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer file.Close() //nolint:errcheck // Best effort cleanup

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}

	var dst io.Writer
	if aw.zipWriter != nil {
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create zip header for %s: %w", srcPath, err)
		}
		header.Name = destPath
		header.Method = zip.Deflate
		if dst, err = aw.zipWriter.CreateHeader(header); err != nil {
			return fmt.Errorf("failed to write zip header for %s: %w", srcPath, err)
		}
	} else {
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to create tar header for %s: %w", srcPath, err)
		}
		header.Name = destPath
		if err := aw.tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", srcPath, err)
		}
		dst = aw.tarWriter
	}

	if _, err := io.Copy(dst, file); err != nil {
		return fmt.Errorf("failed to copy %s to archive: %w", srcPath, err)
	}
	return nil
}

// archiveEntry is one member of an archive being read
type archiveEntry struct {
	Name  string
	Size  int64
	IsDir bool

	// Regular is false for links and devices, which are never extracted
	Regular bool
}

// walkArchive calls fn for each entry of the archive at filePath. r is only
// valid during the call.
func walkArchive(filePath string, format Format, fn func(e archiveEntry, r io.Reader) error) error {
	if format == FormatZip {
		return walkZip(filePath, fn)
	}

	tarReader, closers, err := openArchiveReader(filePath, format)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: failed to read tar entry: %w", ErrInvalidArchive, err)
		}

		e := archiveEntry{
			Name:    header.Name,
			Size:    header.Size,
			IsDir:   header.Typeflag == tar.TypeDir,
			Regular: header.Typeflag == tar.TypeReg,
		}
		if err := fn(e, tarReader); err != nil {
			return err
		}
	}
}

// openArchiveReader opens a tarball and returns a tar reader over its
// decompressor. The caller closes the returned closers with closeAll.
//
//nolint:gosec // G304: filePath is resolved inside the backup directory
func openArchiveReader(filePath string, format Format) (*tar.Reader, []io.Closer, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open backup file: %w", err)
	}

	closers := []io.Closer{file}
	var reader io.Reader

	switch format {
	case FormatTarGzip:
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close() //nolint:errcheck // Best effort cleanup on error
			return nil, nil, fmt.Errorf("%w: failed to create gzip reader: %w", ErrInvalidArchive, err)
		}
		closers = append(closers, gzReader)
		reader = gzReader

	case FormatTarZstd:
		zstdReader, err := zstd.NewReader(file)
		if err != nil {
			file.Close() //nolint:errcheck // Best effort cleanup on error
			return nil, nil, fmt.Errorf("%w: failed to create zstd reader: %w", ErrInvalidArchive, err)
		}
		rc := zstdReader.IOReadCloser()
		closers = append(closers, rc)
		reader = rc

	default:
		file.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, nil, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}

	return tar.NewReader(reader), closers, nil
}

func walkZip(filePath string, fn func(e archiveEntry, r io.Reader) error) error {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return fmt.Errorf("%w: failed to open zip: %w", ErrInvalidArchive, err)
	}
	defer zr.Close() //nolint:errcheck // read-only

	for _, f := range zr.File {
		info := f.FileInfo()
		e := archiveEntry{
			Name:    f.Name,
			Size:    int64(f.UncompressedSize64), //nolint:gosec // G115: bounded by validateExtractionSize
			IsDir:   info.IsDir(),
			Regular: info.Mode().IsRegular(),
		}
		if e.IsDir {
			if err := fn(e, nil); err != nil {
				return err
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: failed to open %s: %w", ErrInvalidArchive, f.Name, err)
		}
		err = fn(e, rc)
		rc.Close() //nolint:errcheck // read-only
		if err != nil {
			return err
		}
	}
	return nil
}

// closeAll closes all closers in reverse order
func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i].Close() //nolint:errcheck // Best effort cleanup
	}
}
