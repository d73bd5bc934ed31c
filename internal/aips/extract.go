/*
Package aips extracts authorization identifiers and their bundle dates from
the Swissmedic AIPS XML export in a single streaming pass.
*/
package aips

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shanehull/aipsscraper/internal/types"

	"golang.org/x/net/html/charset"
)

// ErrParse marks malformed markup in the source document.
var ErrParse = errors.New("malformed AIPS document")

const readBufferSize = 256 * 1024

// Walk reads r token by token and calls fn for every record in document
// order. It never buffers more than one token, so the document size is
// unbounded. An error from fn stops the walk and is returned as is.
func Walk(r io.Reader, fn func(types.Record) error) error {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var state parserState
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			state.open(t.Name.Local)
		case xml.EndElement:
			state.close(t.Name.Local)
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			record, ok := state.text(text)
			if !ok {
				continue
			}
			if err := fn(record); err != nil {
				return err
			}
		}
	}
}

// Extract collects every record of the document. On a parse error no
// records are returned.
func Extract(r io.Reader) ([]types.Record, error) {
	var records []types.Record
	err := Walk(r, func(rec types.Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func ExtractFile(path string) ([]types.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close document", "path", path, "err", err)
		}
	}()

	records, err := Extract(bufio.NewReaderSize(f, readBufferSize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
