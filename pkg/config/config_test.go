package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, StorageGlobal, cfg.Storage.Mode)
	require.Equal(t, "responses", cfg.Storage.SubPath)
	require.Equal(t, DefaultMaxHistoryItems, cfg.History.MaxItems)
	require.Equal(t, ViewPreview, cfg.Response.ViewMode)
	require.Equal(t, ContentBody, cfg.Response.ViewContent)
	require.False(t, cfg.Response.PrettyPrint)
	require.Equal(t, []NameSource{
		NameFromMetaData, NameFromResponseCount, NameFromStatusCodeAndURL,
	}, cfg.Response.PreferredNameSources)
	require.Equal(t, []ExtensionStrategy{
		ExtensionFromURL, ExtensionFromMimeType, ExtensionFromRegex,
	}, cfg.Response.ExtensionRecognition)
	require.Equal(t, DefaultViewer, cfg.Response.ImageViewer)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hitview.yaml")
	content := `
storage:
  mode: workspace
  subPath: .responses
history:
  maxItems: 5
response:
  viewMode: reuse
  prettyPrint: true
  extensionRecognition: mimetype, regex
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, StorageWorkspace, cfg.Storage.Mode)
	require.Equal(t, ".responses", cfg.Storage.SubPath)
	require.Equal(t, 5, cfg.History.MaxItems)
	require.Equal(t, ViewReuse, cfg.Response.ViewMode)
	require.True(t, cfg.Response.PrettyPrint)
	require.Equal(t, []ExtensionStrategy{ExtensionFromMimeType, ExtensionFromRegex},
		cfg.Response.ExtensionRecognition)
	// untouched keys keep their defaults
	require.Equal(t, ContentBody, cfg.Response.ViewContent)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HITVIEW_STORAGE_MODE", "none")
	t.Setenv("HITVIEW_HISTORY_MAXITEMS", "7")
	cfg := Default()
	require.Equal(t, StorageNone, cfg.Storage.Mode)
	require.Equal(t, 7, cfg.History.MaxItems)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown storage mode",
			mutate:  func(c *Config) { c.Storage.Mode = "cloud" },
			wantErr: true,
		},
		{
			name:    "sub path escaping base",
			mutate:  func(c *Config) { c.Storage.SubPath = "../x" },
			wantErr: true,
		},
		{
			name:    "sub path pointing at the base itself",
			mutate:  func(c *Config) { c.Storage.SubPath = "./" },
			wantErr: true,
		},
		{
			name:    "absolute sub path",
			mutate:  func(c *Config) { c.Storage.SubPath = "/" },
			wantErr: true,
		},
		{
			name:   "empty sub path selects the default",
			mutate: func(c *Config) { c.Storage.SubPath = "" },
		},
		{
			name:   "nested sub path",
			mutate: func(c *Config) { c.Storage.SubPath = "out/responses" },
		},
		{
			name:    "zero history",
			mutate:  func(c *Config) { c.History.MaxItems = 0 },
			wantErr: true,
		},
		{
			name:    "unknown view mode",
			mutate:  func(c *Config) { c.Response.ViewMode = "popup" },
			wantErr: true,
		},
		{
			name:    "unknown view content",
			mutate:  func(c *Config) { c.Response.ViewContent = "timings" },
			wantErr: true,
		},
		{
			name: "unknown name source",
			mutate: func(c *Config) {
				c.Response.PreferredNameSources = []NameSource{"random"}
			},
			wantErr: true,
		},
		{
			name: "unknown extension strategy",
			mutate: func(c *Config) {
				c.Response.ExtensionRecognition = []ExtensionStrategy{"magic"}
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
