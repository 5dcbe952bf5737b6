package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hbagdi/hitview/pkg/printer"
	"github.com/spf13/afero"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

const formattedFileMode = 0o600

// Terminal is an Editor that shows documents by printing them. The
// documents it "opened" are remembered so that visible documents can be
// reported back to the history.
type Terminal struct {
	fs         afero.Fs
	out        io.Writer
	in         *bufio.Reader
	printer    printer.Printer
	activeFile string
	root       string
	logger     *zap.Logger

	mu      sync.Mutex
	visible []Document
	// preview is the index in visible of the transient preview document.
	preview int
}

type TerminalOpts struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Out receives documents and prompts.
	Out io.Writer
	// In answers prompts. A nil In cancels every save dialog.
	In io.Reader
	// Mode selects colored or plain output.
	Mode printer.Mode
	// ActiveFile is the .http file the responses were produced from.
	ActiveFile    string
	WorkspaceRoot string
	Logger        *zap.Logger
}

var _ Editor = &Terminal{}

func NewTerminal(opts TerminalOpts) (*Terminal, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("no logger")
	}
	if opts.Out == nil {
		return nil, fmt.Errorf("no output writer")
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	t := &Terminal{
		fs:         fs,
		out:        opts.Out,
		printer:    printer.NewPrinter(printer.Opts{Writer: opts.Out, Mode: opts.Mode}),
		activeFile: opts.ActiveFile,
		root:       opts.WorkspaceRoot,
		logger:     opts.Logger,
		preview:    -1,
	}
	if opts.In != nil {
		t.in = bufio.NewReader(opts.In)
	}
	return t, nil
}

func (t *Terminal) ActiveFile() (string, bool) {
	return t.activeFile, t.activeFile != ""
}

func (t *Terminal) WorkspaceRoot(string) (string, bool) {
	return t.root, t.root != ""
}

func (t *Terminal) ActiveDocument() (Document, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.visible) == 0 {
		return Document{}, false
	}
	return t.visible[len(t.visible)-1], true
}

func (t *Terminal) VisibleDocuments() []Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Document(nil), t.visible...)
}

func (t *Terminal) OpenDocument(ctx context.Context, opts OpenOptions) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	content, err := afero.ReadFile(t.fs, opts.URI)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %v", err)
	}
	doc := Document{URI: opts.URI, Language: opts.Language}
	if err := t.print(content, doc); err != nil {
		return Document{}, fmt.Errorf("print document: %v", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case (opts.Reuse || opts.Preview) && t.preview >= 0:
		t.visible = append(t.visible[:t.preview], t.visible[t.preview+1:]...)
		fallthrough
	case opts.Reuse || opts.Preview:
		t.visible = append(t.visible, doc)
		t.preview = len(t.visible) - 1
	default:
		t.visible = append(t.visible, doc)
	}
	t.logger.Debug("opened document", zap.String("uri", doc.URI),
		zap.String("language", doc.Language))
	return doc, nil
}

func (t *Terminal) print(content []byte, doc Document) error {
	if !utf8.Valid(content) {
		_, err := fmt.Fprintf(t.out, "<binary content, %d bytes: %s>\n", len(content), doc.URI)
		return err
	}
	return t.printer.PrintDocument(content, doc.Language)
}

// FormatActiveDocument indents the active document in place. Only JSON
// documents have a formatter.
func (t *Terminal) FormatActiveDocument(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, ok := t.ActiveDocument()
	if !ok || doc.Language != "json" {
		return nil
	}
	content, err := afero.ReadFile(t.fs, doc.URI)
	if err != nil {
		return fmt.Errorf("read active document: %v", err)
	}
	formatted := pretty.Pretty(content)
	if err := afero.WriteFile(t.fs, doc.URI, formatted, formattedFileMode); err != nil {
		return fmt.Errorf("write formatted document: %v", err)
	}
	return nil
}

// SaveDialog prompts for a path on the terminal. An empty answer accepts
// the suggestion; end of input cancels.
func (t *Terminal) SaveDialog(ctx context.Context, suggested string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.in == nil {
		return "", ErrCancelled
	}
	if _, err := fmt.Fprintf(t.out, "Save response to [%s]: ", suggested); err != nil {
		return "", err
	}
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("read answer: %v", err)
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		answer = suggested
	}
	if answer == "" {
		return "", ErrCancelled
	}
	return answer, nil
}
