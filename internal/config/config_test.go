package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proto-matcher/internal/mapping"
	"proto-matcher/internal/signature"
)

func TestStore_LoadGeneratesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, generated, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.True(t, generated)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)

	_, generated, err = NewStore(path).Load()
	require.NoError(t, err)
	assert.False(t, generated)
}

func TestStore_LoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
REF_DESCRIPTOR_FILE: ref/desc.pb
REF_PROTO_LIST: ref/list.json
PACKAGE_NAME: game
MAX_DISPLAY_MATCHES: 3
THRESHOLD: 0.75
DEFAULT_EMPTY_TO_BYTES: false
OUTPUT_FORMAT: yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, generated, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.False(t, generated)

	assert.Equal(t, "ref/desc.pb", cfg.RefDescriptorFile)
	assert.Equal(t, "ref/list.json", cfg.RefProtoList)
	assert.Equal(t, "game", cfg.PackageName)
	assert.Equal(t, 3, cfg.MaxDisplayMatches)
	assert.Equal(t, 0.75, cfg.Threshold)
	assert.False(t, cfg.DefaultEmptyToBytes)
	assert.Equal(t, mapping.FormatYAML, cfg.ArtifactFormat())
	assert.Equal(t, "output", cfg.OutputDir, "defaults fill the gaps")
	assert.Equal(t, []string{KeyObsDescriptorFile}, cfg.MissingInputs())
}

func TestStore_EnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("THRESHOLD: 0.6\n"), 0644))

	t.Setenv("PROTOMATCHER_THRESHOLD", "0.9")
	t.Setenv("PROTOMATCHER_ALLOW_CYCLES", "true")

	cfg, _, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Threshold)
	assert.True(t, cfg.AllowCycles)
}

func TestStore_LoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("THRESHOLD: 1.5\nMAX_SIG_DEPTH: -1\n"), 0644))

	_, _, err := NewStore(path).Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), KeyThreshold)
	assert.Contains(t, err.Error(), KeyMaxSigDepth)
}

func TestStore_SetWritesBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	store := NewStore(path)
	_, _, err := store.Load()
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyObsDescriptorFile, "obs/desc.pb"))

	cfg, _, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "obs/desc.pb", cfg.ObsDescriptorFile)
}

func TestNewStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFile, NewStore("").Path())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "threshold zero", mutate: func(c *Config) { c.Threshold = 0 }},
		{name: "threshold one", mutate: func(c *Config) { c.Threshold = 1 }},
		{name: "threshold negative", mutate: func(c *Config) { c.Threshold = -0.1 }, wantErr: true},
		{name: "negative matches", mutate: func(c *Config) { c.MaxDisplayMatches = -1 }, wantErr: true},
		{name: "yaml output", mutate: func(c *Config) { c.OutputFormat = "yaml" }},
		{name: "unknown output format", mutate: func(c *Config) { c.OutputFormat = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ArtifactFormat(t *testing.T) {
	cfg := Default()
	assert.Equal(t, mapping.FormatJSON, cfg.ArtifactFormat())

	cfg.OutputFormat = "YML"
	assert.Equal(t, mapping.FormatYAML, cfg.ArtifactFormat())
}

func TestConfig_SignatureOptions(t *testing.T) {
	cfg := Default()
	cfg.AllowCycles = true

	assert.Equal(t, signature.Options{AbsentToBytes: true, AllowCycles: true}, cfg.SignatureOptions())
}
