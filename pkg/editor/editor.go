// Package editor defines what the response history needs from the editor it
// runs in, and a terminal implementation of it used by the CLI.
package editor

import (
	"context"
	"errors"
)

// ErrCancelled is returned by a SaveDialog the user dismissed.
var ErrCancelled = errors.New("cancelled by user")

// Document is an open editor document backed by a file.
type Document struct {
	URI      string
	Language string
}

type OpenOptions struct {
	URI      string
	Language string
	// Preview asks for a transient tab that the next preview replaces.
	Preview bool
	// Reuse shows the document in the tab of the previous response.
	Reuse bool
}

// Workspace answers where files live.
type Workspace interface {
	// ActiveFile is the path of the source file in the active editor.
	ActiveFile() (string, bool)
	// WorkspaceRoot is the root folder containing file, or the only root if
	// file is empty.
	WorkspaceRoot(file string) (string, bool)
}

type Editor interface {
	Workspace
	ActiveDocument() (Document, bool)
	VisibleDocuments() []Document
	OpenDocument(ctx context.Context, opts OpenOptions) (Document, error)
	// FormatActiveDocument runs the formatter on the active document.
	FormatActiveDocument(ctx context.Context) error
	// SaveDialog asks the user for a destination path. It returns
	// ErrCancelled when the user declines.
	SaveDialog(ctx context.Context, suggested string) (string, error)
}

// Viewer opens files with an external application.
type Viewer interface {
	// Open hands path to the application identified by viewer.
	Open(path, viewer string) error
}
