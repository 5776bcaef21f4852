package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/libfinder/internal/libcal"
)

var allEnv = []string{
	EnvClientID, EnvClientSecret, EnvBaseURL, EnvTimeout, EnvLibrariesFile,
	fallbackClientID, fallbackClientSecret,
}

// clearEnv unsets every variable the package reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.ClientID)
	assert.Empty(t, cfg.ClientSecret)
	assert.Equal(t, libcal.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, libcal.DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.LibrariesFile)
}

func TestFromEnv_Values(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvClientID, "id")
	t.Setenv(EnvClientSecret, "secret")
	t.Setenv(EnvBaseURL, "https://example.libcal.com/api/1.1")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvLibrariesFile, "libs.yaml")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		ClientID:      "id",
		ClientSecret:  "secret",
		BaseURL:       "https://example.libcal.com/api/1.1",
		Timeout:       5 * time.Second,
		LibrariesFile: "libs.yaml",
	}, cfg)
}

func TestFromEnv_FallbackNames(t *testing.T) {
	clearEnv(t)
	t.Setenv(fallbackClientID, "plain-id")
	t.Setenv(fallbackClientSecret, "plain-secret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "plain-id", cfg.ClientID)
	assert.Equal(t, "plain-secret", cfg.ClientSecret)

	t.Setenv(EnvClientID, "prefixed-id")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "prefixed-id", cfg.ClientID)
}

func TestFromEnv_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "soon")

	_, err := FromEnv()
	assert.ErrorContains(t, err, EnvTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	content := "LIBCAL_CLIENT_ID=file-id\nLIBCAL_CLIENT_SECRET=file-secret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-id", cfg.ClientID)
	assert.Equal(t, "file-secret", cfg.ClientSecret)
}

func TestLoad_EnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvClientID, "from-env")
	t.Setenv(EnvClientSecret, "")
	require.NoError(t, os.Unsetenv(EnvClientSecret))

	path := filepath.Join(t.TempDir(), "test.env")
	content := "LIBCAL_CLIENT_ID=file-id\nLIBCAL_CLIENT_SECRET=file-secret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ClientID)
	assert.Equal(t, "file-secret", cfg.ClientSecret)
}

func TestLoad_MissingNamedFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, libcal.DefaultBaseURL, cfg.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid",
			cfg:  Config{ClientID: "id", ClientSecret: "secret", Timeout: time.Second},
		},
		{
			name:    "missing id",
			cfg:     Config{ClientSecret: "secret", Timeout: time.Second},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "missing secret",
			cfg:     Config{ClientID: "id", Timeout: time.Second},
			wantErr: ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := Config{ClientID: "id", ClientSecret: "secret"}.Validate()
	assert.ErrorContains(t, err, "timeout")
}

func TestDirectory(t *testing.T) {
	dir, err := Config{}.Directory()
	require.NoError(t, err)
	assert.Equal(t, "Route 9 Library & Innovation Center", dir.DisplayName(9404))

	path := filepath.Join(t.TempDir(), "libraries.yaml")
	content := "libraries:\n  - {id: 1, name: \"Test Library\", location_id: 42}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	dir, err = Config{LibrariesFile: path}.Directory()
	require.NoError(t, err)
	require.Equal(t, 1, dir.Len())
	lib, ok := dir.Resolve(1)
	require.True(t, ok)
	require.True(t, lib.HasLocation())
	assert.Equal(t, 42, *lib.LocationID)

	_, err = Config{LibrariesFile: filepath.Join(t.TempDir(), "missing.yaml")}.Directory()
	assert.Error(t, err)
}

func TestClientConfig(t *testing.T) {
	cfg := Config{ClientID: "id", ClientSecret: "secret", BaseURL: "https://x", Timeout: time.Second}
	cc := cfg.ClientConfig(nil, nil)
	assert.Equal(t, "id", cc.ClientID)
	assert.Equal(t, "secret", cc.ClientSecret)
	assert.Equal(t, "https://x", cc.BaseURL)
	assert.Equal(t, time.Second, cc.Timeout)
}
