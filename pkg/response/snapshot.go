package response

import (
	"net/http"
	"time"

	"github.com/hbagdi/hitview/pkg/model"
)

// Snapshot is the persistable part of an Item: everything except the
// evicted body fields and the editor bindings.
type Snapshot struct {
	ID            string
	Created       time.Time
	Name          string
	Line          *int
	OpenWith      string
	Extension     string
	MetaData      map[string]string
	TestResults   []model.TestResult
	ResponseName  string
	Protocol      string
	StatusCode    int
	StatusMessage string
	ContentType   string
	Header        http.Header
	Timings       model.Timings
	RequestMethod string
	RequestURL    string
	ResponseURI   string
}

func (i *Item) Snapshot() Snapshot {
	s := Snapshot{
		ID:          i.ID,
		Created:     i.Created,
		Name:        i.Name,
		Line:        i.Line,
		OpenWith:    i.OpenWith,
		Extension:   i.Extension,
		MetaData:    i.MetaData,
		TestResults: i.TestResults,
		ResponseURI: i.ResponseURI(),
	}
	if resp := i.Response; resp != nil {
		s.ResponseName = resp.Name
		s.Protocol = resp.Protocol
		s.StatusCode = resp.StatusCode
		s.StatusMessage = resp.StatusMessage
		s.ContentType = resp.ContentType
		s.Header = resp.Header
		s.Timings = resp.Timings
		if resp.Request != nil {
			s.RequestMethod = resp.Request.Method
			s.RequestURL = resp.Request.URL
		}
	}
	return s
}

// Restore rebuilds an evicted Item from a snapshot. Its body is read from
// the snapshot's backing file on demand.
func Restore(s Snapshot, read ReadFunc) *Item {
	resp := &model.Response{
		Name:          s.ResponseName,
		Protocol:      s.Protocol,
		StatusCode:    s.StatusCode,
		StatusMessage: s.StatusMessage,
		ContentType:   s.ContentType,
		Header:        s.Header,
		Timings:       s.Timings,
	}
	if s.RequestMethod != "" || s.RequestURL != "" {
		resp.Request = &model.Request{Method: s.RequestMethod, URL: s.RequestURL}
	}
	item := &Item{
		ID:          s.ID,
		Created:     s.Created,
		Name:        s.Name,
		Line:        s.Line,
		OpenWith:    s.OpenWith,
		Extension:   s.Extension,
		MetaData:    s.MetaData,
		TestResults: s.TestResults,
		Response:    resp,
	}
	if s.ResponseURI != "" {
		item.Evict(s.ResponseURI, read)
	}
	return item
}
