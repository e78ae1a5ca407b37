package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the stock settings match the documented VoxNovel
// Proxmox deployment: compose file name, data directory layout, web port.
func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, "docker-compose.proxmox.yml", s.ComposeFile)
	assert.Equal(t, "voxnovel", s.ProjectName)
	assert.Equal(t, 8080, s.WebPort)
	assert.Equal(t, "/health", s.HealthPath)
	assert.Equal(t, GPUAuto, s.GPU)

	// The directory list must cover all volume-backing host paths.
	assert.Contains(t, s.DataDirs, "data/uploads")
	assert.Contains(t, s.DataDirs, "data/output_audiobooks")
	assert.Contains(t, s.DataDirs, "data/Working_files")
	assert.Contains(t, s.DataDirs, "data/Final_combined_output_audio")
	assert.Contains(t, s.DataDirs, "data/tortoise")
	assert.Contains(t, s.DataDirs, "nginx")

	// GPU environment pass-through per the compose file contract.
	assert.Equal(t, []string{"NVIDIA_VISIBLE_DEVICES", "CUDA_VISIBLE_DEVICES"}, s.PassEnv)

	require.NoError(t, s.Validate())
}

// TestLoad_MissingFileUsesDefaults verifies that a nonexistent settings
// file is not an error — the file is optional.
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "voxdeploy.jsonc"))
	require.NoError(t, err)
	assert.Equal(t, Default().ComposeFile, s.ComposeFile)
}

// TestLoad_JSONCWithComments verifies that a commented settings file
// parses and that omitted fields keep their defaults.
func TestLoad_JSONCWithComments(t *testing.T) {
	content := `{
  // Use the staging compose file on this host.
  "composeFile": "docker-compose.staging.yml",
  "webPort": 9090, // behind nginx
  /* leave everything else stock */
}`
	path := filepath.Join(t.TempDir(), "voxdeploy.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docker-compose.staging.yml", s.ComposeFile)
	assert.Equal(t, 9090, s.WebPort)
	// Untouched fields inherit defaults.
	assert.Equal(t, "voxnovel", s.ProjectName)
	assert.Equal(t, 120, s.ReadinessTimeoutSec)
}

// TestLoad_InvalidJSON verifies that a malformed settings file fails
// loudly instead of silently falling back to defaults.
func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxdeploy.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{not json at all"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings file")
}

// TestLoad_EnvOverrides verifies the VOXDEPLOY_* layer wins over both
// defaults and the settings file.
func TestLoad_EnvOverrides(t *testing.T) {
	content := `{"composeFile": "from-file.yml", "webPort": 9090}`
	path := filepath.Join(t.TempDir(), "voxdeploy.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("VOXDEPLOY_COMPOSE_FILE", "from-env.yml")
	t.Setenv("VOXDEPLOY_WEB_PORT", "7070")
	t.Setenv("VOXDEPLOY_PROJECT", "voxnovel-staging")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.yml", s.ComposeFile)
	assert.Equal(t, 7070, s.WebPort)
	assert.Equal(t, "voxnovel-staging", s.ProjectName)
}

// TestLoad_MalformedEnvOverride verifies a non-numeric port override is
// rejected rather than ignored.
func TestLoad_MalformedEnvOverride(t *testing.T) {
	t.Setenv("VOXDEPLOY_WEB_PORT", "eighty-eighty")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VOXDEPLOY_WEB_PORT")
}

// TestValidate covers the cross-field rules: empty identifiers, port
// ranges, GPU mode values, and the octal directory mode.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"empty compose file", func(s *Settings) { s.ComposeFile = "" }, "composeFile"},
		{"empty project", func(s *Settings) { s.ProjectName = "" }, "projectName"},
		{"port too high", func(s *Settings) { s.WebPort = 70000 }, "out of range"},
		{"port zero", func(s *Settings) { s.WebPort = 0 }, "out of range"},
		{"zero timeout", func(s *Settings) { s.ReadinessTimeoutSec = 0 }, "readinessTimeoutSec"},
		{"zero interval", func(s *Settings) { s.PollIntervalSec = 0 }, "pollIntervalSec"},
		{"bad gpu mode", func(s *Settings) { s.GPU = "maybe" }, "gpu mode"},
		{"bad dir mode", func(s *Settings) { s.DirMode = "rwxr-xr-x" }, "dirMode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestMode verifies octal parsing with and without the leading zero.
func TestMode(t *testing.T) {
	s := Default()

	mode, err := s.Mode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), mode)

	s.DirMode = "777"
	mode, err = s.Mode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o777), mode)
}

// TestComposeEnv verifies only variables actually set in the process
// environment are forwarded to compose.
func TestComposeEnv(t *testing.T) {
	s := Default()

	t.Setenv("NVIDIA_VISIBLE_DEVICES", "all")
	t.Setenv("CUDA_VISIBLE_DEVICES", "")

	env := s.ComposeEnv()
	assert.Equal(t, map[string]string{"NVIDIA_VISIBLE_DEVICES": "all"}, env)
}
