package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	_, err = execute(t, "--config", path, "config", "set", "screenshot.max_width", "640")
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "get", "screenshot.max_width")
	require.NoError(t, err)
	assert.Equal(t, "640", strings.TrimSpace(out))

	out, err = execute(t, "--config", path, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "max_width: 640")

	_, err = execute(t, "--config", path, "config", "set", "screenshot.quality", "500")
	assert.Error(t, err)

	_, err = execute(t, "--config", path, "config", "get", "nope")
	assert.Error(t, err)
}

func TestPortFlagOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "--config", path, "--port", "9300", "config", "get", "server.base_port")
	require.NoError(t, err)
	assert.Equal(t, "9300", strings.TrimSpace(out))
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:image/png;base64,YWJj")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = decodeDataURI("data:image/png,abc")
	assert.Error(t, err)
	_, err = decodeDataURI("data:image/png;base64,***")
	assert.Error(t, err)
}

func TestParseDimension(t *testing.T) {
	n, err := parseDimension("width", "1280")
	require.NoError(t, err)
	assert.Equal(t, uint32(1280), n)

	_, err = parseDimension("width", "-1")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
