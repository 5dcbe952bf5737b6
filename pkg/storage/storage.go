package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/hbagdi/hitview/pkg/editor"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	dirMode  = 0o755
	fileMode = 0o600
	// defaultLocalDir is used below a source file or workspace root when no
	// usable sub path is configured.
	defaultLocalDir  = ".hitview"
	defaultGlobalDir = "responses"
)

// ownedFile matches the names this package hands out: item bodies
// (<id>.<ext>), previews (<id>-headers.http, <id>-pretty.json, ...) and
// temporary files of interrupted writes.
var ownedFile = regexp.MustCompile(
	`^([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(-[a-z]+)?(\.[A-Za-z0-9_+-]+)?|\.hitview-[0-9]+)$`)

// Provider is the scratch space response bodies are evicted to. Every I/O
// failure is logged and reported as a zero value; nothing is returned as an
// error except from ReadFile.
type Provider struct {
	fs        afero.Fs
	cfg       config.Storage
	workspace editor.Workspace
	globalDir string
	logger    *zap.Logger

	mu      sync.Mutex
	tracked map[string]struct{}
}

type Opts struct {
	// Fs defaults to the OS filesystem.
	Fs        afero.Fs
	Config    config.Storage
	Workspace editor.Workspace
	// GlobalDir is the root used by the global storage mode.
	GlobalDir string
	Logger    *zap.Logger
}

func NewProvider(opts Opts) (*Provider, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("no logger")
	}
	if opts.Config.Mode == config.StorageGlobal && opts.GlobalDir == "" {
		return nil, fmt.Errorf("global storage mode requires a global directory")
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Provider{
		fs:        fs,
		cfg:       opts.Config,
		workspace: opts.Workspace,
		globalDir: opts.GlobalDir,
		logger:    opts.Logger,
		tracked:   map[string]struct{}{},
	}, nil
}

func (p *Provider) Mode() config.StorageMode {
	return p.cfg.Mode
}

// ResolveBaseDirectory computes the directory files are written to. It
// returns false when storage is disabled or the mode has nothing to anchor
// to (no active file, no workspace).
func (p *Provider) ResolveBaseDirectory() (string, bool) {
	switch p.cfg.Mode {
	case config.StorageGlobal:
		return filepath.Join(p.globalDir, p.subPath(defaultGlobalDir)), true
	case config.StorageFile:
		if p.workspace == nil {
			return "", false
		}
		file, ok := p.workspace.ActiveFile()
		if !ok {
			return "", false
		}
		return filepath.Join(filepath.Dir(file), p.subPath(defaultLocalDir)), true
	case config.StorageWorkspace:
		if p.workspace == nil {
			return "", false
		}
		file, _ := p.workspace.ActiveFile()
		root, ok := p.workspace.WorkspaceRoot(file)
		if !ok {
			return "", false
		}
		return filepath.Join(root, p.subPath(defaultLocalDir)), true
	default:
		return "", false
	}
}

// subPath is the configured sub path, or def when it is empty or would
// place files in the anchor directory itself or outside of it.
func (p *Provider) subPath(def string) string {
	sub := filepath.Clean(p.cfg.SubPath)
	if p.cfg.SubPath == "" || sub == "." || filepath.IsAbs(sub) ||
		sub == ".." || strings.HasPrefix(sub, ".."+string(filepath.Separator)) {
		return def
	}
	return sub
}

// WriteFile stores content under a sanitized form of suggestedName and
// returns the resulting path.
func (p *Provider) WriteFile(ctx context.Context, content []byte, suggestedName string) (string, bool) {
	if err := ctx.Err(); err != nil {
		p.logger.Debug("storage: write skipped", zap.Error(err))
		return "", false
	}
	base, ok := p.ResolveBaseDirectory()
	if !ok {
		p.logger.Debug("storage: no base directory",
			zap.String("mode", string(p.cfg.Mode)))
		return "", false
	}
	if err := p.fs.MkdirAll(base, dirMode); err != nil && !errors.Is(err, os.ErrExist) {
		p.logger.Error("storage: create base directory",
			zap.String("dir", base), zap.Error(err))
		return "", false
	}

	path := filepath.Join(base, SanitizeFileName(suggestedName))
	if err := p.writeAtomic(path, content); err != nil {
		p.logger.Error("storage: write file",
			zap.String("path", path), zap.Error(err))
		return "", false
	}

	p.mu.Lock()
	p.tracked[path] = struct{}{}
	p.mu.Unlock()
	p.logger.Debug("storage: wrote file", zap.String("path", path),
		zap.Int("size", len(content)))
	return path, true
}

func (p *Provider) writeAtomic(path string, content []byte) error {
	tmp, err := afero.TempFile(p.fs, filepath.Dir(path), ".hitview-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_, err = tmp.Write(content)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = p.fs.Chmod(tmpName, fileMode)
	}
	if err != nil {
		_ = p.fs.Remove(tmpName)
		return err
	}
	if err := p.fs.Rename(tmpName, path); err != nil {
		_ = p.fs.Remove(tmpName)
		return err
	}
	return nil
}

func (p *Provider) ReadFile(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := afero.ReadFile(p.fs, uri)
	if err != nil {
		return nil, fmt.Errorf("read '%v': %w", uri, err)
	}
	return content, nil
}

// Exists reports whether uri is present on disk.
func (p *Provider) Exists(uri string) bool {
	ok, err := afero.Exists(p.fs, uri)
	return err == nil && ok
}

// DeleteFile removes uri. Missing files are not an error.
func (p *Provider) DeleteFile(_ context.Context, uri string) {
	if uri == "" {
		return
	}
	p.mu.Lock()
	delete(p.tracked, uri)
	p.mu.Unlock()
	if err := p.fs.Remove(uri); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("storage: delete file",
			zap.String("path", uri), zap.Error(err))
	}
}

// Tracked lists files written through this provider and not yet deleted.
func (p *Provider) Tracked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]string, 0, len(p.tracked))
	for path := range p.tracked {
		res = append(res, path)
	}
	sort.Strings(res)
	return res
}

// Track registers a file written outside the base directory, such as a
// temporary preview, so that PruneUnused cleans it up.
func (p *Provider) Track(path string) {
	if path == "" {
		return
	}
	p.mu.Lock()
	p.tracked[filepath.Clean(path)] = struct{}{}
	p.mu.Unlock()
}

// PruneUnused deletes every file not listed in keep that was written
// through this provider, or that sits directly in the base directory and
// carries a name this package hands out. Other files are never touched.
// When cacheEmpty is set it also removes the base directory once nothing
// else is left in it.
func (p *Provider) PruneUnused(ctx context.Context, keep []string, cacheEmpty bool) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[filepath.Clean(k)] = struct{}{}
	}
	for _, path := range p.candidates() {
		if ctx.Err() != nil {
			return
		}
		if _, ok := keepSet[path]; ok {
			continue
		}
		p.DeleteFile(ctx, path)
	}

	if !cacheEmpty || p.cfg.Mode == config.StorageNone {
		return
	}
	base, ok := p.ResolveBaseDirectory()
	if !ok {
		return
	}
	for k := range keepSet {
		if isWithin(base, k) {
			p.logger.Debug("storage: base directory still in use",
				zap.String("dir", base), zap.String("path", k))
			return
		}
	}
	if exists, _ := afero.DirExists(p.fs, base); !exists {
		return
	}
	empty, err := afero.IsEmpty(p.fs, base)
	if err != nil {
		p.logger.Warn("storage: inspect base directory",
			zap.String("dir", base), zap.Error(err))
		return
	}
	if !empty {
		p.logger.Debug("storage: base directory holds foreign files",
			zap.String("dir", base))
		return
	}
	if err := p.fs.Remove(base); err != nil {
		p.logger.Warn("storage: remove base directory",
			zap.String("dir", base), zap.Error(err))
		return
	}
	p.logger.Debug("storage: removed base directory", zap.String("dir", base))
}

// candidates are the tracked files plus the owned files found in the base
// directory, which previous runs may have left behind.
func (p *Provider) candidates() []string {
	seen := map[string]struct{}{}
	for _, path := range p.Tracked() {
		seen[path] = struct{}{}
	}
	if base, ok := p.ResolveBaseDirectory(); ok {
		infos, err := afero.ReadDir(p.fs, base)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("storage: list base directory",
				zap.String("dir", base), zap.Error(err))
		}
		for _, info := range infos {
			if info.Mode().IsRegular() && ownedFile.MatchString(info.Name()) {
				seen[filepath.Join(base, info.Name())] = struct{}{}
			}
		}
	}
	res := make([]string, 0, len(seen))
	for path := range seen {
		res = append(res, path)
	}
	sort.Strings(res)
	return res
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
