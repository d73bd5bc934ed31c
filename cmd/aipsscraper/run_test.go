package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shanehull/aipsscraper/internal/archive"
	"github.com/shanehull/aipsscraper/internal/config"
	"github.com/shanehull/aipsscraper/internal/report"
	"github.com/shanehull/aipsscraper/internal/swissmedic"
	"github.com/shanehull/aipsscraper/internal/upload"

	"github.com/stretchr/testify/require"
)

func aipsDocument(bundles ...[2]string) string {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<MedicinalDocuments>\n")
	for _, b := range bundles {
		fmt.Fprintf(&buf, "<MedicinalDocumentsBundle><Date>%sT08:00:00</Date>"+
			"<RegulatedAuthorization><Identifier>%s</Identifier></RegulatedAuthorization>"+
			"</MedicinalDocumentsBundle>\n", b[0], b[1])
	}
	buf.WriteString("</MedicinalDocuments>\n")
	return buf.String()
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "aipsscraper.json5")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestRunFromFileSince(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "AipsDownload_20240601.xml")
	require.NoError(t, os.WriteFile(source, []byte(aipsDocument(
		[2]string{"2024-01-01", "11111"},
		[2]string{"2024-06-01", "22222"},
	)), 0o644))

	err := run(context.Background(), []string{source}, options{
		since:      "01.03.2024",
		configPath: filepath.Join(dir, "missing.json5"),
		outDir:     dir,
	})
	require.NoError(t, err)
	require.Equal(t, "identifier,date\n22222,2024-06-01\n", readOutput(t, filepath.Join(dir, "swissmedicinfo_01.06.2024.csv")))
}

func TestRunValidatesBeforeReading(t *testing.T) {
	dir := t.TempDir()
	err := run(context.Background(), []string{filepath.Join(dir, "missing.xml")}, options{
		larger:     "lots",
		configPath: filepath.Join(dir, "missing.json5"),
	})
	require.ErrorIs(t, err, report.ErrValidation)

	err = run(context.Background(), nil, options{configPath: filepath.Join(dir, "missing.json5")})
	require.ErrorIs(t, err, errUsage)

	err = run(context.Background(), []string{"file.xml"}, options{download: true})
	require.ErrorIs(t, err, errUsage)
}

func TestRunMissingFile(t *testing.T) {
	dir := t.TempDir()
	err := run(context.Background(), []string{filepath.Join(dir, "missing.xml")}, options{
		configPath: filepath.Join(dir, "missing.json5"),
		outDir:     dir,
	})
	require.ErrorContains(t, err, "not found")
}

func consentServer(t *testing.T, page string, payload []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(page))
			return
		}
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

const page = `<html><body><form>
<input type="hidden" name="__VIEWSTATE" value="vs" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="gen" />
<input type="hidden" name="__EVENTVALIDATION" value="ev" />
</form></body></html>`

func TestRunDownloadToday(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	dir := t.TempDir()
	today := time.Now().Format("2006-01-02")

	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	f, err := zw.Create("AipsDownload_20000101.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(aipsDocument(
		[2]string{today, "65432"},
		[2]string{today, "00042"},
		[2]string{"2000-01-01", "11111"},
	)))
	require.NoError(t, err)
	f, err = zw.Create("AipsDownload.xsd")
	require.NoError(t, err)
	_, err = f.Write([]byte("<xs:schema/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	server := consentServer(t, page, zipBuf.Bytes())
	configPath := writeConfig(t, dir, fmt.Sprintf(`{ endpoint: %q, outputDir: %q }`, server.URL+"/", dir))

	err = run(context.Background(), nil, options{
		download:   true,
		today:      true,
		configPath: configPath,
		noUpload:   true,
	})
	require.NoError(t, err)

	require.Equal(t, "00042\n65432\n", readOutput(t, filepath.Join(dir, "today")))
	_, err = os.Stat(filepath.Join(dir, archive.ArchiveName(time.Now())))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, archive.DocumentName(time.Now())))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "AipsDownload.xsd"))
	require.NoError(t, err)
}

func TestRunDownloadErrors(t *testing.T) {
	dir := t.TempDir()

	server := consentServer(t, "<html><body>maintenance</body></html>", nil)
	configPath := writeConfig(t, dir, fmt.Sprintf(`{ endpoint: %q, outputDir: %q }`, server.URL+"/", dir))
	err := run(context.Background(), nil, options{download: true, configPath: configPath})
	require.ErrorIs(t, err, swissmedic.ErrProtocol)

	server = consentServer(t, page, []byte("<html>not a zip</html>"))
	configPath = writeConfig(t, dir, fmt.Sprintf(`{ endpoint: %q, outputDir: %q }`, server.URL+"/", dir))
	err = run(context.Background(), nil, options{download: true, configPath: configPath})
	require.ErrorIs(t, err, archive.ErrNotArchive)
}

func TestNewUploader(t *testing.T) {
	scp := upload.SCP{
		Command: "scp",
		Timeout: 2 * time.Minute,
	}

	cases := []struct {
		name     string
		config   string
		noUpload bool
		expected upload.Uploader
	}{
		{name: "enabled by default", config: `{}`, expected: scp},
		{name: "no-upload flag", config: `{}`, noUpload: true, expected: upload.Noop{}},
		{name: "disabled in config", config: `{ upload: { enabled: false } }`, expected: upload.Noop{}},
		{name: "disabled in config and flag", config: `{ upload: { enabled: false } }`, noUpload: true, expected: upload.Noop{}},
		{
			name:     "custom command",
			config:   `{ upload: { enabled: true, command: "rsync", args: ["-a"], timeoutSeconds: 30 } }`,
			expected: upload.SCP{Command: "rsync", Args: []string{"-a"}, Timeout: 30 * time.Second},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, t.TempDir(), test.config))
			require.NoError(t, err)
			require.Equal(t, test.expected, newUploader(cfg, test.noUpload))
		})
	}
}
