// Package store keeps the history of captured responses. Bodies are moved
// to disk right after capture and read back on demand, so a long history
// costs little memory.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/hbagdi/hitview/pkg/display"
	"github.com/hbagdi/hitview/pkg/editor"
	"github.com/hbagdi/hitview/pkg/model"
	"github.com/hbagdi/hitview/pkg/response"
	"go.uber.org/zap"
)

// Storage is the blob storage bodies are evicted to.
type Storage interface {
	Mode() config.StorageMode
	WriteFile(ctx context.Context, content []byte, suggestedName string) (string, bool)
	ReadFile(ctx context.Context, uri string) ([]byte, error)
	DeleteFile(ctx context.Context, uri string)
	Exists(uri string) bool
	PruneUnused(ctx context.Context, keep []string, cacheEmpty bool)
}

// Displayer presents an item to the user.
type Displayer interface {
	Show(ctx context.Context, item *response.Item) display.Result
}

// Index persists the history between runs.
type Index interface {
	Save(ctx context.Context, snap response.Snapshot) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	List(ctx context.Context, limit int) ([]response.Snapshot, error)
}

// CaptureFunc is handed to the request executor, which calls it once per
// received response.
type CaptureFunc func(ctx context.Context, resp *model.Response, region *model.Region) *response.Item

type Store struct {
	history  config.History
	response config.Response
	storage  Storage
	chain    Displayer
	editor   editor.Editor
	index    Index
	logger   *zap.Logger

	mu        sync.Mutex
	items     []*response.Item
	listeners map[int]func([]*response.Item)
	nextID    int
}

type Opts struct {
	Config  config.Config
	Storage Storage
	Chain   Displayer
	Editor  editor.Editor
	// Index is optional; without it the history lives only in memory.
	Index  Index
	Logger *zap.Logger
}

func New(opts Opts) (*Store, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("no logger")
	}
	if opts.Storage == nil {
		return nil, fmt.Errorf("no storage")
	}
	if opts.Chain == nil {
		return nil, fmt.Errorf("no display chain")
	}
	if opts.Editor == nil {
		return nil, fmt.Errorf("no editor")
	}
	history := opts.Config.History
	if history.MaxItems <= 0 {
		history.MaxItems = config.DefaultMaxHistoryItems
	}
	return &Store{
		history:   history,
		response:  opts.Config.Response,
		storage:   opts.Storage,
		chain:     opts.Chain,
		editor:    opts.Editor,
		index:     opts.Index,
		logger:    opts.Logger,
		listeners: map[int]func([]*response.Item){},
	}, nil
}

// Capture adds and shows a freshly received response.
func (s *Store) Capture(ctx context.Context, resp *model.Response, region *model.Region) *response.Item {
	return s.Add(ctx, resp, region, true)
}

var _ CaptureFunc = (&Store{}).Capture

// Add wraps resp into a history item. The item is shown first (when show is
// set) so that strategies see the full body, then evicted to storage and
// put at the front of the history. Add returns nil when the body could not
// be evicted; such items are not kept.
func (s *Store) Add(ctx context.Context, resp *model.Response, region *model.Region, show bool) *response.Item {
	item := response.New(resp, region, s.response)
	if show {
		s.Show(ctx, item)
	}
	if !s.Shrink(ctx, item) {
		return nil
	}

	s.mu.Lock()
	s.items = append([]*response.Item{item}, s.items...)
	var dropped []*response.Item
	if len(s.items) > s.history.MaxItems {
		dropped = append(dropped, s.items[s.history.MaxItems:]...)
		for i := s.history.MaxItems; i < len(s.items); i++ {
			s.items[i] = nil
		}
		s.items = s.items[:s.history.MaxItems]
	}
	s.mu.Unlock()

	for _, d := range dropped {
		s.logger.Debug("history full, dropping item", zap.String("id", d.ID))
		s.discard(ctx, d)
		s.unindex(ctx, d.ID)
	}
	s.save(ctx, item)
	s.notify()
	return item
}

// Shrink moves the body of item to storage and drops it from memory. On
// failure the item is removed from the history and false is returned.
// With storage disabled the item is left untouched.
func (s *Store) Shrink(ctx context.Context, item *response.Item) bool {
	if s.storage.Mode() == config.StorageNone || item.IsCachedResponse() {
		return true
	}
	content := item.Response.RawBody
	if len(content) == 0 {
		content = []byte(item.Response.Body)
	}
	if len(content) == 0 {
		return true
	}
	uri := item.ResponseURI()
	if uri == "" || !s.storage.Exists(uri) {
		var ok bool
		uri, ok = s.storage.WriteFile(ctx, content, item.FileName())
		if !ok {
			s.logger.Warn("failed to persist response body, dropping item",
				zap.String("id", item.ID), zap.String("name", item.Name))
			s.removeFromHistory(item.ID)
			return false
		}
		item.SetResponseURI(uri)
	}
	item.Evict(uri, s.storage.ReadFile)
	return true
}

// Show runs the display chain for item and reports whether a strategy
// handled it.
func (s *Store) Show(ctx context.Context, item *response.Item) bool {
	res := s.chain.Show(ctx, item)
	if !res.Handled {
		s.logger.Debug("response not shown", zap.String("id", item.ID))
		return false
	}
	if s.response.PrettyPrint {
		if _, ok := s.editor.ActiveDocument(); ok {
			if err := s.editor.FormatActiveDocument(ctx); err != nil {
				s.logger.Warn("format active document", zap.Error(err))
			}
		}
	}
	return true
}

// Remove deletes the item with the id of item from the history along with
// its backing file and document.
func (s *Store) Remove(ctx context.Context, item *response.Item) bool {
	removed := s.removeFromHistory(item.ID)
	if removed == nil {
		return false
	}
	s.discard(ctx, removed)
	s.unindex(ctx, removed.ID)
	s.notify()
	return true
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	for _, item := range items {
		s.discard(ctx, item)
	}
	if s.index != nil {
		if err := s.index.Clear(ctx); err != nil {
			s.logger.Error("clear history index", zap.Error(err))
		}
	}
	s.notify()
}

func (s *Store) removeFromHistory(id string) *response.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return item
		}
	}
	return nil
}

func (s *Store) discard(ctx context.Context, item *response.Item) {
	s.storage.DeleteFile(ctx, item.ResponseURI())
	item.RemoveDocument(ctx, s.storage.DeleteFile)
}

// save indexes item. Without storage the body only lives in this process,
// so the item is not indexed: a restored copy would have no body.
func (s *Store) save(ctx context.Context, item *response.Item) {
	if s.index == nil || s.storage.Mode() == config.StorageNone {
		return
	}
	if err := s.index.Save(ctx, item.Snapshot()); err != nil {
		s.logger.Error("index response", zap.String("id", item.ID), zap.Error(err))
	}
}

func (s *Store) unindex(ctx context.Context, id string) {
	if s.index == nil {
		return
	}
	if err := s.index.Delete(ctx, id); err != nil {
		s.logger.Debug("remove response from index", zap.String("id", id), zap.Error(err))
	}
}

// FindResponseByDocument returns the item shown in doc.
func (s *Store) FindResponseByDocument(doc editor.Document) *response.Item {
	if doc.URI == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.DocumentURI() == doc.URI {
			return item
		}
	}
	return nil
}

// FindResponseByHTTPRegion returns the most recent item captured from a
// region with the same name and line.
func (s *Store) FindResponseByHTTPRegion(region *model.Region) *response.Item {
	if region == nil {
		return nil
	}
	name, ok := region.Meta(response.MetaName)
	if !ok || name == "" {
		name = region.Name
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Name == name && sameLine(item.Line, region.Line) {
			return item
		}
	}
	return nil
}

func sameLine(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) HasItems() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) > 0
}

// Items returns the history, most recent first.
func (s *Store) Items() []*response.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*response.Item(nil), s.items...)
}

func (s *Store) Get(id string) (*response.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// OnHistoryChanged registers fn to receive the history after every change.
// The returned function unregisters it.
func (s *Store) OnHistoryChanged(fn func([]*response.Item)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	items := append([]*response.Item(nil), s.items...)
	listeners := make([]func([]*response.Item), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(items)
	}
}

// Body returns the raw body of item, reading it back from storage when it
// was evicted.
func (s *Store) Body(ctx context.Context, item *response.Item) ([]byte, error) {
	if err := item.LoadResponseBody(ctx); err != nil {
		s.logger.Warn("reload response body", zap.String("id", item.ID), zap.Error(err))
		return nil, err
	}
	if len(item.Response.RawBody) > 0 {
		return item.Response.RawBody, nil
	}
	return []byte(item.Response.Body), nil
}

// Restore replaces the history with the indexed one. Items come back
// evicted; entries whose backing file is gone are dropped from the index.
func (s *Store) Restore(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	snaps, err := s.index.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("restore history: %v", err)
	}
	items := make([]*response.Item, 0, len(snaps))
	for _, snap := range snaps {
		switch {
		case len(items) >= s.history.MaxItems:
			s.storage.DeleteFile(ctx, snap.ResponseURI)
			s.unindex(ctx, snap.ID)
		case snap.ResponseURI != "" && !s.storage.Exists(snap.ResponseURI):
			s.logger.Debug("backing file vanished, forgetting response",
				zap.String("id", snap.ID), zap.String("uri", snap.ResponseURI))
			s.unindex(ctx, snap.ID)
		default:
			items = append(items, response.Restore(snap, s.storage.ReadFile))
		}
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.notify()
	return nil
}

// Prune deletes storage files that neither back a history item nor are
// open in the editor.
func (s *Store) Prune(ctx context.Context) {
	var keep []string
	for _, doc := range s.editor.VisibleDocuments() {
		keep = append(keep, doc.URI)
	}
	items := s.Items()
	for _, item := range items {
		if uri := item.ResponseURI(); uri != "" {
			keep = append(keep, uri)
		}
	}
	s.storage.PruneUnused(ctx, keep, len(items) == 0)
}

// ErrNotFound is returned when an id matches no history item.
var ErrNotFound = errors.New("response not found")

// Lookup returns the item whose id is id or starts with id, as long as the
// prefix is unambiguous.
func (s *Store) Lookup(id string) (*response.Item, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *response.Item
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
		if len(item.ID) > len(id) && item.ID[:len(id)] == id {
			if found != nil {
				return nil, fmt.Errorf("ambiguous id '%v'", id)
			}
			found = item
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}
