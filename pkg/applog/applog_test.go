package applog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidLevel(t *testing.T) {
	_, err := New("", "LOUD", false, false)
	assert.Error(t, err)
}

func TestAttachedWriterReceivesLines(t *testing.T) {
	b, err := New("", "INFO", false, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	b.Attach(&buf)

	log := b.GetLogger("applog_test")
	log.Info("saving samples")
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "INFO applog_test: saving samples")
	assert.NotContains(t, out, "hidden")

	b.Detach(&buf)
	log.Info("after detach")
	assert.NotContains(t, buf.String(), "after detach")
}

func TestSetLevel(t *testing.T) {
	b, err := New("", "ERROR", false, false)
	require.NoError(t, err)
	var buf bytes.Buffer
	b.Attach(&buf)

	log := b.GetLogger("applog_level")
	log.Warning("quiet")
	require.NoError(t, b.SetLevel("DEBUG", ""))
	log.Debug("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
	assert.Error(t, b.SetLevel("nope", ""))
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pingtrack.log")
	b, err := New(path, "NOTICE", false, false)
	require.NoError(t, err)

	b.GetLogger("applog_file").Notice("hello file")
	require.NoError(t, b.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "applog_file: hello file"))
}

func TestDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unused.log")
	b, err := New(path, "DEBUG", true, true)
	require.NoError(t, err)
	b.GetLogger("applog_disabled").Error("dropped")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestFailingWriterIsDetachedAndReported(t *testing.T) {
	b, err := New("", "INFO", false, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	bad := &failingWriter{}
	b.Attach(bad)
	b.Attach(&buf)

	log := b.GetLogger("applog_test")
	log.Info("first")
	log.Info("second")

	assert.Equal(t, 1, bad.writes)
	out := buf.String()
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Equal(t, 1, strings.Count(out, "detached after write error: disk full"))
}

func TestFailingLastWriterReportsToErrOut(t *testing.T) {
	var errOut bytes.Buffer
	f := &fanout{errOut: &errOut}
	f.Attach(&failingWriter{})

	n, err := f.Write([]byte("line\n"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Contains(t, errOut.String(), "*applog.failingWriter detached after write error")

	f.Write([]byte("again\n"))
	assert.Equal(t, 1, strings.Count(errOut.String(), "detached"))
}
