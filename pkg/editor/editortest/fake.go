// Package editortest provides in-memory editor fakes for tests.
package editortest

import (
	"context"
	"sync"

	"github.com/hbagdi/hitview/pkg/editor"
)

// Editor records what it is asked to do. Set SavePath (or SaveErr) to answer
// save dialogs.
type Editor struct {
	mu sync.Mutex

	ActiveFilePath string
	Root           string
	SavePath       string
	SaveErr        error
	OpenErr        error

	Opened      []editor.OpenOptions
	SavePrompts []string
	Formatted   int
	visible     []editor.Document
	active      *editor.Document
}

var _ editor.Editor = &Editor{}

func (e *Editor) ActiveFile() (string, bool) {
	return e.ActiveFilePath, e.ActiveFilePath != ""
}

func (e *Editor) WorkspaceRoot(string) (string, bool) {
	return e.Root, e.Root != ""
}

func (e *Editor) ActiveDocument() (editor.Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return editor.Document{}, false
	}
	return *e.active, true
}

func (e *Editor) VisibleDocuments() []editor.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]editor.Document(nil), e.visible...)
}

func (e *Editor) OpenDocument(_ context.Context, opts editor.OpenOptions) (editor.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.OpenErr != nil {
		return editor.Document{}, e.OpenErr
	}
	e.Opened = append(e.Opened, opts)
	doc := editor.Document{URI: opts.URI, Language: opts.Language}
	if opts.Reuse && len(e.visible) > 0 {
		e.visible[len(e.visible)-1] = doc
	} else {
		e.visible = append(e.visible, doc)
	}
	e.active = &doc
	return doc, nil
}

// Close drops a document from the visible set.
func (e *Editor) Close(uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := e.visible[:0]
	for _, d := range e.visible {
		if d.URI != uri {
			res = append(res, d)
		}
	}
	e.visible = res
	if e.active != nil && e.active.URI == uri {
		e.active = nil
	}
}

func (e *Editor) FormatActiveDocument(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Formatted++
	return nil
}

func (e *Editor) SaveDialog(_ context.Context, suggested string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.SavePrompts = append(e.SavePrompts, suggested)
	if e.SaveErr != nil {
		return "", e.SaveErr
	}
	if e.SavePath == "" {
		return "", editor.ErrCancelled
	}
	return e.SavePath, nil
}

// Viewer records the files it was asked to open.
type Viewer struct {
	mu     sync.Mutex
	Err    error
	Opened []Opened
}

type Opened struct {
	Path   string
	Viewer string
}

var _ editor.Viewer = &Viewer{}

func (v *Viewer) Open(path, viewer string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.Err != nil {
		return v.Err
	}
	v.Opened = append(v.Opened, Opened{Path: path, Viewer: viewer})
	return nil
}
