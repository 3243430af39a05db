// ABOUTME: Tests for logger construction.
// ABOUTME: Checks level handling, stderr replacement and the rotating file sink.

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("quiet")
	logger.WithField("media_id", "abc").Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "media_id=abc")
}

func TestVerboseRaisesToDebug(t *testing.T) {
	logger, err := New(Options{Level: "error", Verbose: true, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger, err = New(Options{Level: "trace", Verbose: true, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.TraceLevel, logger.GetLevel())
}

func TestBadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "myaktube.log")
	logger, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	logger.WithField("playlist_id", "p1").Info("created playlist")
	require.NoError(t, Close(logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "created playlist")
	assert.Contains(t, string(data), "playlist_id=p1")
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestCloseLeavesCallerWriterOpen(t *testing.T) {
	out := &closeRecorder{}
	logger, err := New(Options{Output: out})
	require.NoError(t, err)

	require.NoError(t, Close(logger))
	assert.False(t, out.closed)

	logger.Warn("still writing")
	assert.Contains(t, out.String(), "still writing")
}
