package response

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hbagdi/hitview/pkg/config"
	"github.com/hbagdi/hitview/pkg/model"
	"github.com/tidwall/gjson"
)

// Metadata keys a request region can set to steer how its response is
// handled.
const (
	MetaName           = "name"
	MetaSave           = "save"
	MetaNoResponseView = "noResponseView"
	MetaOpenWith       = "openWith"

	metaExtension = "extension"
)

// ReadFunc loads the content of a backing file.
type ReadFunc func(ctx context.Context, uri string) ([]byte, error)

// Item is one captured response in the history.
type Item struct {
	ID          string
	Created     time.Time
	Name        string
	Line        *int
	OpenWith    string
	Extension   string
	MetaData    map[string]string
	TestResults []model.TestResult
	Response    *model.Response

	mu          sync.Mutex
	documentURI string
	responseURI string
	cached      bool
	// loadBody is set only while the body is evicted to responseURI.
	loadBody func(ctx context.Context) error
}

// New wraps a captured response. No I/O happens here.
func New(resp *model.Response, region *model.Region, cfg config.Response) *Item {
	if resp == nil {
		resp = &model.Response{}
	}
	if len(resp.RawBody) == 0 && resp.Body != "" {
		resp.RawBody = []byte(resp.Body)
	}
	if resp.Body == "" && len(resp.RawBody) > 0 {
		resp.Body = string(resp.RawBody)
	}
	if resp.ParsedBody == nil && len(resp.RawBody) > 0 && gjson.ValidBytes(resp.RawBody) {
		resp.ParsedBody = gjson.ParseBytes(resp.RawBody).Value()
	}

	item := &Item{
		ID:        uuid.NewString(),
		Created:   time.Now(),
		Name:      deriveName(resp, region, cfg.PreferredNameSources),
		Extension: deriveExtension(resp, region, cfg.ExtensionRecognition),
		OpenWith:  deriveOpenWith(resp, region, cfg),
		Response:  resp,
	}
	if region != nil {
		if region.Line != nil {
			line := *region.Line
			item.Line = &line
		}
		if len(region.MetaData) > 0 {
			item.MetaData = make(map[string]string, len(region.MetaData))
			for k, v := range region.MetaData {
				item.MetaData[k] = v
			}
		}
	}
	return item
}

func deriveName(resp *model.Response, region *model.Region, sources []config.NameSource) string {
	for _, source := range sources {
		switch source {
		case config.NameFromMetaData:
			if name, ok := region.Meta(MetaName); ok && name != "" {
				return name
			}
			if region != nil && region.Name != "" {
				return region.Name
			}
		case config.NameFromResponseCount:
			if resp.Name != "" {
				return resp.Name
			}
		case config.NameFromStatusCodeAndURL:
			if resp.Request != nil && resp.Request.URL != "" {
				return fmt.Sprintf("%s %d %s", protocol(resp), resp.StatusCode,
					resp.Request.URL)
			}
		}
	}
	return fmt.Sprintf("%s %d", protocol(resp), resp.StatusCode)
}

func protocol(resp *model.Response) string {
	if resp.Protocol == "" {
		return "HTTP"
	}
	return resp.Protocol
}

func deriveOpenWith(resp *model.Response, region *model.Region, cfg config.Response) string {
	if viewer, ok := region.Meta(MetaOpenWith); ok {
		if viewer == "" {
			return config.DefaultViewer
		}
		return viewer
	}
	mt := mediaType(contentTypeOf(resp))
	switch {
	case imageType.MatchString(mt):
		return cfg.ImageViewer
	case mt == "application/pdf":
		return cfg.PDFViewer
	default:
		return ""
	}
}

// HasMeta reports whether the originating region set key.
func (i *Item) HasMeta(key string) bool {
	_, ok := i.MetaData[key]
	return ok
}

func (i *Item) Meta(key string) string {
	return i.MetaData[key]
}

// FileName is the name the body is persisted under.
func (i *Item) FileName() string {
	return i.ID + "." + i.Extension
}

func (i *Item) Language() string {
	return Language(i.Extension)
}

func (i *Item) DocumentURI() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.documentURI
}

func (i *Item) SetDocumentURI(uri string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.documentURI = uri
}

func (i *Item) ResponseURI() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.responseURI
}

func (i *Item) SetResponseURI(uri string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.responseURI = uri
}

// IsCachedResponse reports whether the body currently lives only on disk.
func (i *Item) IsCachedResponse() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cached
}

// Evict drops the heavy fields of the response and arranges for the body
// to be read back from uri by the next LoadResponseBody.
func (i *Item) Evict(uri string, read ReadFunc) {
	i.mu.Lock()
	defer i.mu.Unlock()

	resp := i.Response
	if resp.Request != nil {
		resp.Request.Body = nil
	}
	resp.ParsedBody = nil
	resp.Body = ""
	resp.RawHeaders = ""
	resp.RawBody = nil
	resp.PrettyPrintBody = ""

	i.responseURI = uri
	i.cached = true
	i.loadBody = func(ctx context.Context) error {
		content, err := read(ctx, uri)
		if err != nil {
			return err
		}
		resp.RawBody = content
		resp.Body = string(content)
		i.loadBody = nil
		i.cached = false
		return nil
	}
}

// LoadResponseBody restores an evicted body. It is a no-op for items whose
// body is in memory.
func (i *Item) LoadResponseBody(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.loadBody == nil {
		return nil
	}
	if err := i.loadBody(ctx); err != nil {
		return fmt.Errorf("load response body of '%v': %w", i.ID, err)
	}
	return nil
}

// RemoveDocument deletes the document bound to the item through remove and
// forgets it, whatever the outcome.
func (i *Item) RemoveDocument(ctx context.Context, remove func(ctx context.Context, uri string)) {
	i.mu.Lock()
	uri := i.documentURI
	i.documentURI = ""
	i.mu.Unlock()
	if uri != "" && remove != nil {
		remove(ctx, uri)
	}
}
