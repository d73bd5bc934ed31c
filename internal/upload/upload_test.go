package upload

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireCommand(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
	return path
}

func TestSCPUploadCopies(t *testing.T) {
	cp := requireCommand(t, "cp")

	dir := t.TempDir()
	src := filepath.Join(dir, "today")
	dst := filepath.Join(dir, "remote")
	require.NoError(t, os.WriteFile(src, []byte("04512\n"), 0o644))

	err := SCP{Command: cp}.Upload(context.Background(), src, dst)
	require.NoError(t, err)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "04512\n", string(content))
}

func TestSCPUploadFailures(t *testing.T) {
	cp := requireCommand(t, "cp")

	err := SCP{Command: cp}.Upload(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed with status")

	err = SCP{Command: filepath.Join(t.TempDir(), "no-such-scp")}.Upload(context.Background(), "today", "host:/tmp/")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to execute")
}

func TestSCPUploadTimeout(t *testing.T) {
	sh := requireCommand(t, "sh")

	// path and destination become $0 and $1 of the script.
	uploader := SCP{Command: sh, Args: []string{"-c", "sleep 5"}, Timeout: 50 * time.Millisecond}
	err := uploader.Upload(context.Background(), "today", "host:/tmp/")
	require.Error(t, err)
	require.Contains(t, err.Error(), "timed out")
}

func TestNoop(t *testing.T) {
	var u Uploader = Noop{}
	require.NoError(t, u.Upload(context.Background(), "today", "host:/tmp/"))
}
