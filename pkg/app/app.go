// Package app wires the response history together. It is the only place
// that knows every component; everything else receives its collaborators.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/hbagdi/hitview/pkg/db"
	"github.com/hbagdi/hitview/pkg/display"
	"github.com/hbagdi/hitview/pkg/editor"
	logPkg "github.com/hbagdi/hitview/pkg/log"
	"github.com/hbagdi/hitview/pkg/printer"
	"github.com/hbagdi/hitview/pkg/storage"
	"github.com/hbagdi/hitview/pkg/store"
	"github.com/hbagdi/hitview/pkg/util"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const dbDirMode = 0o700

type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Storage *storage.Provider
	Editor  editor.Editor
	Store   *store.Store

	index      *db.Store
	ownsLogger bool
}

type Opts struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Out and In back the terminal editor. They default to stdout and stdin.
	Out io.Writer
	In  io.Reader
	// NoColor disables colored terminal output.
	NoColor bool
	// Editor replaces the terminal editor.
	Editor editor.Editor
	// Viewer defaults to the desktop's registered applications.
	Viewer editor.Viewer
	// ActiveFile and WorkspaceRoot anchor the file and workspace storage
	// modes.
	ActiveFile    string
	WorkspaceRoot string
	// GlobalDir is the root of the global storage mode. Defaults to the user
	// cache directory.
	GlobalDir string
	// Logger replaces the one built from the configuration.
	Logger *zap.Logger
}

// New builds every component from cfg and restores the persisted history.
func New(ctx context.Context, cfg config.Config, opts Opts) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}
	a := &App{Config: cfg, Logger: opts.Logger}
	if a.Logger == nil {
		logger, err := logPkg.New(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("initialize logger: %v", err)
		}
		a.Logger = logger
		a.ownsLogger = true
	}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Viewer == nil {
		opts.Viewer = editor.NewSystemViewer()
	}

	a.Editor = opts.Editor
	if a.Editor == nil {
		var mode printer.Mode = printer.ModeColorConsole
		if opts.NoColor {
			mode = printer.ModeNoColor
		}
		terminal, err := editor.NewTerminal(editor.TerminalOpts{
			Fs:            opts.Fs,
			Out:           opts.Out,
			In:            opts.In,
			Mode:          mode,
			ActiveFile:    opts.ActiveFile,
			WorkspaceRoot: opts.WorkspaceRoot,
			Logger:        a.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize terminal: %v", err)
		}
		a.Editor = terminal
	}

	globalDir := opts.GlobalDir
	if globalDir == "" && cfg.Storage.Mode == config.StorageGlobal {
		dir, err := util.EnsureCacheDir()
		if err != nil {
			return nil, fmt.Errorf("initialize cache directory: %v", err)
		}
		globalDir = dir
	}
	var err error
	a.Storage, err = storage.NewProvider(storage.Opts{
		Fs:        opts.Fs,
		Config:    cfg.Storage,
		Workspace: a.Editor,
		GlobalDir: globalDir,
		Logger:    a.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %v", err)
	}

	storeOpts := store.Opts{
		Config:  cfg,
		Storage: a.Storage,
		Chain: display.DefaultChain(display.Opts{
			Config:  cfg.Response,
			Storage: a.Storage,
			Editor:  a.Editor,
			Viewer:  opts.Viewer,
			Fs:      opts.Fs,
			Logger:  a.Logger,
		}),
		Editor: a.Editor,
		Logger: a.Logger,
	}
	if !cfg.DB.Disabled {
		a.index, err = openIndex(cfg.DB, a.Logger)
		if err != nil {
			return nil, err
		}
		storeOpts.Index = a.index
	}
	a.Store, err = store.New(storeOpts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialize store: %v", err)
	}
	if err := a.Store.Restore(ctx); err != nil {
		a.Logger.Warn("history could not be restored", zap.Error(err))
	}
	return a, nil
}

func openIndex(cfg config.DB, logger *zap.Logger) (*db.Store, error) {
	path := cfg.Path
	if path == "" {
		if _, err := util.EnsureCacheDir(); err != nil {
			return nil, fmt.Errorf("initialize cache directory: %v", err)
		}
		var err error
		if path, err = util.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("locate history index: %v", err)
		}
	} else if err := util.EnsureDir(filepath.Dir(path), dbDirMode); err != nil {
		return nil, fmt.Errorf("create database directory: %v", err)
	}
	index, err := db.NewStore(db.StoreOpts{Path: path, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("initialize history index: %v", err)
	}
	return index, nil
}

// Close releases the index and flushes the logger.
func (a *App) Close() error {
	var err error
	if a.index != nil {
		err = a.index.Close()
		a.index = nil
	}
	if a.ownsLogger {
		_ = a.Logger.Sync()
	}
	return err
}

// WrapCommand funnels the failures of fn, panics included, to the logger
// and returns them wrapped with the command name. Every CLI entry point runs
// through it.
func WrapCommand(name string, logger *zap.Logger,
	fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: panic: %v", name, r)
				logger.Error("command panicked", zap.String("command", name),
					zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		if err := fn(ctx); err != nil {
			logger.Debug("command failed", zap.String("command", name), zap.Error(err))
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}
