package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeWorkspace struct {
	activeFile string
	root       string
}

func (f fakeWorkspace) ActiveFile() (string, bool) {
	return f.activeFile, f.activeFile != ""
}

func (f fakeWorkspace) WorkspaceRoot(string) (string, bool) {
	return f.root, f.root != ""
}

func newProvider(t *testing.T, cfg config.Storage, ws fakeWorkspace) (*Provider, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	p, err := NewProvider(Opts{
		Fs:        fs,
		Config:    cfg,
		Workspace: ws,
		GlobalDir: "/cache/hitview",
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return p, fs
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		opts    Opts
		wantErr bool
	}{
		{
			name:    "provider without logger",
			opts:    Opts{Config: config.Storage{Mode: config.StorageNone}},
			wantErr: true,
		},
		{
			name: "global mode without global dir",
			opts: Opts{
				Config: config.Storage{Mode: config.StorageGlobal},
				Logger: zap.NewNop(),
			},
			wantErr: true,
		},
		{
			name: "provider with logger",
			opts: Opts{
				Config: config.Storage{Mode: config.StorageWorkspace},
				Logger: zap.NewNop(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveBaseDirectory(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.Storage
		ws     fakeWorkspace
		want   string
		wantOK bool
	}{
		{
			name: "none",
			cfg:  config.Storage{Mode: config.StorageNone},
		},
		{
			name:   "global with sub path",
			cfg:    config.Storage{Mode: config.StorageGlobal, SubPath: "responses"},
			want:   "/cache/hitview/responses",
			wantOK: true,
		},
		{
			name:   "global without sub path",
			cfg:    config.Storage{Mode: config.StorageGlobal},
			want:   "/cache/hitview/responses",
			wantOK: true,
		},
		{
			name:   "file next to active file",
			cfg:    config.Storage{Mode: config.StorageFile},
			ws:     fakeWorkspace{activeFile: "/work/api/users.http"},
			want:   "/work/api/.hitview",
			wantOK: true,
		},
		{
			name: "file without active file",
			cfg:  config.Storage{Mode: config.StorageFile},
		},
		{
			name:   "workspace with sub path",
			cfg:    config.Storage{Mode: config.StorageWorkspace, SubPath: "out"},
			ws:     fakeWorkspace{root: "/work"},
			want:   "/work/out",
			wantOK: true,
		},
		{
			name: "workspace without root",
			cfg:  config.Storage{Mode: config.StorageWorkspace},
			ws:   fakeWorkspace{activeFile: "/tmp/x.http"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newProvider(t, tt.cfg, tt.ws)
			got, ok := p.ResolveBaseDirectory()
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestWriteReadDelete(t *testing.T) {
	ctx := context.Background()
	p, fs := newProvider(t, config.Storage{Mode: config.StorageGlobal}, fakeWorkspace{})

	uri, ok := p.WriteFile(ctx, []byte(`{"a":1}`), "abc.json")
	require.True(t, ok)
	require.Equal(t, filepath.FromSlash("/cache/hitview/abc.json"), uri)
	require.True(t, p.Exists(uri))
	require.Equal(t, []string{uri}, p.Tracked())

	content, err := p.ReadFile(ctx, uri)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(content))

	// no temp files are left behind
	entries, err := afero.ReadDir(fs, filepath.Dir(uri))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	p.DeleteFile(ctx, uri)
	require.False(t, p.Exists(uri))
	require.Empty(t, p.Tracked())

	// deleting twice is fine
	p.DeleteFile(ctx, uri)
}

func TestWriteFileFailures(t *testing.T) {
	t.Run("storage disabled", func(t *testing.T) {
		p, _ := newProvider(t, config.Storage{Mode: config.StorageNone}, fakeWorkspace{})
		uri, ok := p.WriteFile(context.Background(), []byte("x"), "a.txt")
		require.False(t, ok)
		require.Empty(t, uri)
	})
	t.Run("cancelled context", func(t *testing.T) {
		p, _ := newProvider(t, config.Storage{Mode: config.StorageGlobal}, fakeWorkspace{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, ok := p.WriteFile(ctx, []byte("x"), "a.txt")
		require.False(t, ok)
	})
	t.Run("read only filesystem", func(t *testing.T) {
		p, err := NewProvider(Opts{
			Fs:        afero.NewReadOnlyFs(afero.NewMemMapFs()),
			Config:    config.Storage{Mode: config.StorageGlobal},
			GlobalDir: "/cache",
			Logger:    zaptest.NewLogger(t),
		})
		require.NoError(t, err)
		_, ok := p.WriteFile(context.Background(), []byte("x"), "a.txt")
		require.False(t, ok)
	})
}

func TestPruneUnused(t *testing.T) {
	ctx := context.Background()
	p, fs := newProvider(t, config.Storage{Mode: config.StorageGlobal, SubPath: "r"},
		fakeWorkspace{})

	a, ok := p.WriteFile(ctx, []byte("a"), "a.txt")
	require.True(t, ok)
	b, ok := p.WriteFile(ctx, []byte("b"), "b.txt")
	require.True(t, ok)

	p.PruneUnused(ctx, []string{a}, false)
	require.True(t, p.Exists(a))
	require.False(t, p.Exists(b))

	// a visible file keeps the directory alive even when the cache is empty
	p.PruneUnused(ctx, []string{a}, true)
	require.True(t, p.Exists(a))

	p.PruneUnused(ctx, nil, true)
	require.False(t, p.Exists(a))
	exists, err := afero.DirExists(fs, filepath.FromSlash("/cache/hitview/r"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPruneUnusedLeftovers(t *testing.T) {
	ctx := context.Background()
	p, fs := newProvider(t, config.Storage{Mode: config.StorageGlobal, SubPath: "r"},
		fakeWorkspace{})
	base := filepath.FromSlash("/cache/hitview/r")
	old := filepath.Join(base, "0b6c3a2e-8f1d-4e55-9a0b-6f5d2c1e7a90.json")
	oldHeaders := filepath.Join(base, "0b6c3a2e-8f1d-4e55-9a0b-6f5d2c1e7a90-headers.http")
	interrupted := filepath.Join(base, ".hitview-123456")
	kept := filepath.Join(base, "5d7f0c1a-2b3c-4d5e-8f90-a1b2c3d4e5f6.json")
	foreign := filepath.Join(base, "notes.json")
	for _, path := range []string{old, oldHeaders, interrupted, kept, foreign} {
		require.NoError(t, afero.WriteFile(fs, path, []byte("{}"), 0o600))
	}
	require.NoError(t, fs.MkdirAll(filepath.Join(base, "nested"), 0o755))

	p.PruneUnused(ctx, []string{kept}, false)
	require.False(t, p.Exists(old))
	require.False(t, p.Exists(oldHeaders))
	require.False(t, p.Exists(interrupted))
	require.True(t, p.Exists(kept))
	require.True(t, p.Exists(foreign))
	require.True(t, p.Exists(filepath.Join(base, "nested")))

	// foreign content keeps the base directory alive
	p.PruneUnused(ctx, nil, true)
	require.False(t, p.Exists(kept))
	require.True(t, p.Exists(foreign))
}

func TestPruneUnusedLeavesAnchorDirectory(t *testing.T) {
	tests := []struct {
		name    string
		subPath string
	}{
		{name: "dot", subPath: "."},
		{name: "absolute", subPath: "/"},
		{name: "empty", subPath: ""},
		{name: "escaping", subPath: "../.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p, fs := newProvider(t, config.Storage{Mode: config.StorageFile, SubPath: tt.subPath},
				fakeWorkspace{activeFile: "/work/api.http"})
			request := filepath.FromSlash("/work/api.http")
			require.NoError(t, afero.WriteFile(fs, request, []byte("GET /"), 0o600))

			base, ok := p.ResolveBaseDirectory()
			require.True(t, ok)
			require.Equal(t, filepath.FromSlash("/work/.hitview"), base)

			uri, ok := p.WriteFile(ctx, []byte("{}"), "0b6c3a2e-8f1d-4e55-9a0b-6f5d2c1e7a90.json")
			require.True(t, ok)
			p.PruneUnused(ctx, nil, true)
			require.False(t, p.Exists(uri))
			require.True(t, p.Exists(request))
			exists, err := afero.DirExists(fs, filepath.FromSlash("/work"))
			require.NoError(t, err)
			require.True(t, exists)
		})
	}
}

func TestTrackedFilesArePruned(t *testing.T) {
	ctx := context.Background()
	p, fs := newProvider(t, config.Storage{Mode: config.StorageNone}, fakeWorkspace{})
	preview := filepath.FromSlash("/tmp/hitview-1-preview.json")
	visible := filepath.FromSlash("/tmp/hitview-2-preview.json")
	for _, path := range []string{preview, visible} {
		require.NoError(t, afero.WriteFile(fs, path, []byte("{}"), 0o600))
		p.Track(path)
	}

	p.PruneUnused(ctx, []string{visible}, true)
	require.False(t, p.Exists(preview))
	require.True(t, p.Exists(visible))
	require.Equal(t, []string{visible}, p.Tracked())
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "abc.json", want: "abc.json"},
		{name: "invalid chars", in: `a/b\c:d*e?f"g<h>i|j.txt`, want: "abcdefghij.txt"},
		{name: "whitespace", in: "  HTTP/1.1 200  ok .json", want: "HTTP1.1_200_ok_.json"},
		{name: "empty", in: "///", want: "response"},
		{
			name: "long name keeps extension",
			in:   strings.Repeat("x", 80) + ".json",
			want: strings.Repeat("x", 45) + ".json",
		},
		{
			name: "multibyte runes are not split",
			in:   strings.Repeat("ä", 30) + ".txt",
			want: strings.Repeat("ä", 23) + ".txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.in)
			require.Equal(t, tt.want, got)
			require.LessOrEqual(t, len(got), maxFileNameLength)
		})
	}
}
