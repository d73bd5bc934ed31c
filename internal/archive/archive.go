/*
Package archive persists the downloaded AIPS ZIP and unpacks the data
document and its schema companions next to it.
*/
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotArchive means the payload could not be opened as a ZIP.
	ErrNotArchive = errors.New("payload is not a ZIP archive")
	// ErrNoDocument means the archive held no AIPS XML member.
	ErrNoDocument = errors.New("no AipsDownload XML member in archive")
)

const (
	documentMarker = "AipsDownload"
	filePrefix     = "AipsDownload_"
	stampLayout    = "20060102"
)

type Result struct {
	DocumentPath string
	SchemaPaths  []string
	Members      []string
}

// DocumentName is the file name the XML member is stored under for a
// download made at now.
func DocumentName(now time.Time) string {
	return filePrefix + now.Format(stampLayout) + ".xml"
}

func ArchiveName(now time.Time) string {
	return filePrefix + now.Format(stampLayout) + ".zip"
}

// SaveArchive writes the raw download as a dated archival copy.
func SaveArchive(dir string, data []byte, now time.Time) (string, error) {
	dest := filepath.Join(dir, ArchiveName(now))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save archive %s: %w", dest, err)
	}
	slog.Info("saved archive", "path", dest, "bytes", len(data))
	return dest, nil
}

func isDocument(name string) bool {
	return strings.HasSuffix(name, ".xml") && strings.Contains(name, documentMarker)
}

func isSchema(name string) bool {
	return strings.HasSuffix(name, ".xsd")
}

// Unwrap copies the AIPS XML member to DocumentName(now) and every .xsd
// member to its own base name, both inside dir. Other members are skipped.
func Unwrap(data []byte, dir string, now time.Time) (*Result, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotArchive, err)
	}

	result := &Result{}
	for _, member := range reader.File {
		name := member.Name
		result.Members = append(result.Members, name)
		slog.Debug("archive member", "name", name, "bytes", member.UncompressedSize64)

		switch {
		case isDocument(name):
			dest := filepath.Join(dir, DocumentName(now))
			if err := copyMember(member, dest); err != nil {
				return nil, err
			}
			result.DocumentPath = dest
			slog.Info("extracted document", "member", name, "path", dest)
		case isSchema(name):
			// Only the base name is kept so that member paths can't escape dir.
			dest := filepath.Join(dir, path.Base(name))
			if err := copyMember(member, dest); err != nil {
				return nil, err
			}
			result.SchemaPaths = append(result.SchemaPaths, dest)
			slog.Info("extracted schema", "member", name, "path", dest)
		}
	}

	if result.DocumentPath == "" {
		return nil, fmt.Errorf("%w (members: %s)", ErrNoDocument, strings.Join(result.Members, ", "))
	}
	return result, nil
}

func copyMember(member *zip.File, dest string) (err error) {
	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to open member %s: %w", member.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dest, cerr)
		}
	}()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to extract %s to %s: %w", member.Name, dest, err)
	}
	return nil
}
