package report

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/shanehull/aipsscraper/internal/types"
)

// ErrOutput marks a report file that could not be written.
var ErrOutput = errors.New("failed to write report")

const (
	TodayFileName  = "today"
	fileDateLayout = "02.01.2006"
)

var sourceDatePattern = regexp.MustCompile(`^AipsDownload_?(\d{8})\.xml$`)

// SourceDate returns the DD.MM.YYYY date embedded in an AipsDownload_YYYYMMDD.xml
// file name, or now's date if the name doesn't follow that pattern.
func SourceDate(name string, now time.Time) string {
	m := sourceDatePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return now.Format(fileDateLayout)
	}
	stamp := m[1]
	return stamp[6:8] + "." + stamp[4:6] + "." + stamp[0:4]
}

// OutputName picks the report file name for the request.
func OutputName(req types.FilterRequest, sourceName string, now time.Time) string {
	date := SourceDate(sourceName, now)
	switch req.Mode() {
	case types.ModeToday:
		return TodayFileName
	case types.ModeThreshold:
		return "larger_" + strconv.FormatUint(uint64(*req.Larger), 10) + "_" + date + ".csv"
	default:
		return "swissmedicinfo_" + date + ".csv"
	}
}

func WriteCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"identifier", "date"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Identifier, r.Date}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLines writes one identifier per line without a header.
func WriteLines(w io.Writer, ids []string) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if _, err := bw.WriteString(id + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrOutput, cerr)
		}
	}()

	if err := render(f); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, path, err)
	}
	return nil
}
