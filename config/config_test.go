package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, VaultFileName, filepath.Base(c.VaultPath))
	assert.Equal(t, AppDirName, filepath.Base(filepath.Dir(c.VaultPath)))
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, 30*time.Second, c.ClipboardTimeout)
	assert.False(t, c.VerifyOnUnlock)
	assert.Equal(t, KDF{Time: 3, Memory: 256 * 1024, Threads: 1}, c.KDF)
	require.NoError(t, c.Validate())
}

func TestDefaultDataDir_XDG(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG_DATA_HOME only applies on unix")
	}
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	assert.Equal(t, filepath.Join(dir, AppDirName), DefaultDataDir())

	t.Setenv("XDG_DATA_HOME", "relative/ignored")
	assert.NotEqual(t, filepath.Join("relative/ignored", AppDirName), DefaultDataDir())
}

func TestLoad_OverlaysYAML(t *testing.T) {
	path := writeTempYAML(t, `
vault_path: /tmp/pk/passwords.enc
log_level: debug
clipboard_timeout: 10s
verify_on_unlock: true
kdf:
  time: 1
  memory_kib: 8192
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pk/passwords.enc", cfg.VaultPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ClipboardTimeout)
	assert.True(t, cfg.VerifyOnUnlock)
	assert.Equal(t, KDF{Time: 1, Memory: 8192, Threads: 1}, cfg.KDF, "unset keys keep defaults")

	p := cfg.KDFParams()
	assert.Equal(t, uint32(8192), p.Memory)
	assert.Empty(t, p.Salt)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "an explicit config path must exist")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "{ this is: [not valid"},
		{"bad level", "log_level: loud"},
		{"zero kdf", "kdf:\n  threads: 0"},
		{"negative timeout", "clipboard_timeout: -1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempYAML(t, tt.body))
			require.Error(t, err)
		})
	}
}
