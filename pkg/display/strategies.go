package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/hbagdi/hitview/pkg/editor"
	"github.com/hbagdi/hitview/pkg/printer"
	"github.com/hbagdi/hitview/pkg/response"
	"github.com/hbagdi/hitview/pkg/storage"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	StrategySave           = "save"
	StrategyNoResponseView = "noResponseView"
	StrategyOpenWith       = "openWith"
	StrategyPreview        = "preview"

	dirMode       = 0o755
	savedFileMode = 0o644
)

// Storage is where strategies persist content they need on disk.
type Storage interface {
	WriteFile(ctx context.Context, content []byte, suggestedName string) (string, bool)
}

// tracker is implemented by storages that can clean up files written
// elsewhere, such as temporary previews.
type tracker interface {
	Track(path string)
}

type Opts struct {
	Config  config.Response
	Storage Storage
	Editor  editor.Editor
	Viewer  editor.Viewer
	// Fs receives saved files and temporary previews. Defaults to the OS
	// filesystem.
	Fs     afero.Fs
	Logger *zap.Logger
}

// DefaultChain builds save, noResponseView, openWith, preview in that order.
func DefaultChain(opts Opts) *Chain {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return NewChain(opts.Logger,
		&SaveStrategy{Editor: opts.Editor, Fs: opts.Fs},
		NoResponseViewStrategy{},
		&OpenWithStrategy{Storage: opts.Storage, Viewer: opts.Viewer},
		&PreviewStrategy{
			Config:  opts.Config,
			Storage: opts.Storage,
			Editor:  opts.Editor,
			Fs:      opts.Fs,
		},
	)
}

func body(ctx context.Context, item *response.Item) ([]byte, error) {
	if err := item.LoadResponseBody(ctx); err != nil {
		return nil, err
	}
	if len(item.Response.RawBody) > 0 {
		return item.Response.RawBody, nil
	}
	return []byte(item.Response.Body), nil
}

// SaveStrategy writes the body to a location the user picks when the request
// asked for it with the save metadata.
type SaveStrategy struct {
	Editor editor.Editor
	Fs     afero.Fs
}

func (s *SaveStrategy) Name() string { return StrategySave }

func (s *SaveStrategy) Show(ctx context.Context, item *response.Item) (bool, error) {
	if !item.HasMeta(response.MetaSave) {
		return false, nil
	}
	content, err := body(ctx, item)
	if err != nil {
		return false, err
	}
	if len(content) == 0 {
		return false, nil
	}
	if ctx.Err() != nil {
		return false, nil
	}
	suggested := item.Meta(response.MetaSave)
	if suggested == "" {
		suggested = storage.SanitizeFileName(item.Name + "." + item.Extension)
	}
	path, err := s.Editor.SaveDialog(ctx, suggested)
	if err != nil {
		if errors.Is(err, editor.ErrCancelled) || ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("save dialog: %v", err)
	}
	if path == "" {
		return false, nil
	}
	if err := s.Fs.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return false, fmt.Errorf("create directory for '%v': %v", path, err)
	}
	if err := afero.WriteFile(s.Fs, path, content, savedFileMode); err != nil {
		return false, fmt.Errorf("save response to '%v': %v", path, err)
	}
	return true, nil
}

// NoResponseViewStrategy swallows responses whose request asked not to be
// shown.
type NoResponseViewStrategy struct{}

func (NoResponseViewStrategy) Name() string { return StrategyNoResponseView }

func (NoResponseViewStrategy) Show(_ context.Context, item *response.Item) (bool, error) {
	return item.HasMeta(response.MetaNoResponseView), nil
}

// OpenWithStrategy hands binary responses (images, pdf) to an external
// viewer.
type OpenWithStrategy struct {
	Storage Storage
	Viewer  editor.Viewer
}

func (s *OpenWithStrategy) Name() string { return StrategyOpenWith }

func (s *OpenWithStrategy) Show(ctx context.Context, item *response.Item) (bool, error) {
	if item.OpenWith == "" || s.Viewer == nil {
		return false, nil
	}
	uri := item.ResponseURI()
	if uri == "" {
		content, err := body(ctx, item)
		if err != nil {
			return false, err
		}
		if len(content) == 0 || s.Storage == nil {
			return false, nil
		}
		var ok bool
		uri, ok = s.Storage.WriteFile(ctx, content, item.FileName())
		if !ok {
			return false, nil
		}
		item.SetResponseURI(uri)
	}
	if err := s.Viewer.Open(uri, item.OpenWith); err != nil {
		return false, fmt.Errorf("open '%v' with '%v': %v", uri, item.OpenWith, err)
	}
	return true, nil
}

// PreviewStrategy opens the response in an editor document. It handles
// every item unless previews are switched off.
type PreviewStrategy struct {
	Config  config.Response
	Storage Storage
	Editor  editor.Editor
	Fs      afero.Fs
}

func (s *PreviewStrategy) Name() string { return StrategyPreview }

func (s *PreviewStrategy) Show(ctx context.Context, item *response.Item) (bool, error) {
	if s.Config.ViewMode == config.ViewNone || s.Editor == nil {
		return false, nil
	}
	uri, language, err := s.document(ctx, item)
	if err != nil {
		return false, err
	}
	if uri == "" {
		return false, nil
	}
	doc, err := s.Editor.OpenDocument(ctx, editor.OpenOptions{
		URI:      uri,
		Language: language,
		Preview:  s.Config.ViewMode == config.ViewPreview,
		Reuse:    s.Config.ViewMode == config.ViewReuse,
	})
	if err != nil {
		return false, fmt.Errorf("open document '%v': %v", uri, err)
	}
	item.SetDocumentURI(doc.URI)
	return true, nil
}

// document writes the content to show and returns its location.
func (s *PreviewStrategy) document(ctx context.Context, item *response.Item) (string, string, error) {
	viewContent := s.Config.ViewContent
	if viewContent == config.ContentBody {
		content, err := body(ctx, item)
		if err != nil {
			return "", "", err
		}
		if len(content) > 0 {
			if s.Config.PrettyPrint {
				// the document gets formatted in place, so it must not be
				// the backing file of the item
				uri, _, err := s.write(ctx, content, item.ID+"-pretty."+item.Extension)
				if err != nil {
					return "", "", err
				}
				return uri, item.Language(), nil
			}
			if uri := item.ResponseURI(); uri != "" {
				return uri, item.Language(), nil
			}
			uri, persisted, err := s.write(ctx, content, item.FileName())
			if err != nil {
				return "", "", err
			}
			if persisted {
				item.SetResponseURI(uri)
			}
			return uri, item.Language(), nil
		}
		// nothing to show in the body, show the headers instead
		viewContent = config.ContentHeaders
	}

	var buf bytes.Buffer
	p := printer.NewPrinter(printer.Opts{Writer: &buf, Mode: printer.ModeNoColor})
	var suffix string
	switch viewContent {
	case config.ContentHeaders:
		suffix = "-headers.http"
		if err := p.PrintHeaders(item.Response); err != nil {
			return "", "", err
		}
	default:
		suffix = "-exchange.http"
		if err := item.LoadResponseBody(ctx); err != nil {
			return "", "", err
		}
		if err := p.Print(item.Response); err != nil {
			return "", "", err
		}
	}
	uri, _, err := s.write(ctx, buf.Bytes(), item.ID+suffix)
	if err != nil {
		return "", "", err
	}
	return uri, response.Language("http"), nil
}

// write persists through storage and falls back to a temporary file when
// storage is disabled. persisted is true when storage took the content.
func (s *PreviewStrategy) write(ctx context.Context, content []byte, name string) (string, bool, error) {
	if s.Storage != nil {
		if uri, ok := s.Storage.WriteFile(ctx, content, name); ok {
			return uri, true, nil
		}
	}
	if ctx.Err() != nil {
		return "", false, nil
	}
	f, err := afero.TempFile(s.Fs, "", "hitview-*-"+storage.SanitizeFileName(name))
	if err != nil {
		return "", false, fmt.Errorf("create temporary preview: %v", err)
	}
	_, err = f.Write(content)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return "", false, fmt.Errorf("write temporary preview: %v", err)
	}
	if t, ok := s.Storage.(tracker); ok {
		t.Track(f.Name())
	}
	return f.Name(), false, nil
}
