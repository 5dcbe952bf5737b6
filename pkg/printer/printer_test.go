package printer

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/hbagdi/hitview/pkg/model"
	"github.com/stretchr/testify/require"
)

func noColorPrinter() (Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(Opts{Writer: &buf, Mode: ModeNoColor}), &buf
}

func TestPrint(t *testing.T) {
	p, buf := noColorPrinter()
	err := p.Print(&model.Response{
		Protocol:   "HTTP/1.1",
		StatusCode: 201,
		Header: http.Header{
			"Content-Type": {"application/json"},
			"A-Header":     {"a"},
		},
		RawBody: []byte(`{"s":"foobar"}`),
		Request: &model.Request{
			Method: http.MethodPost,
			URL:    "http://foo.com/bar",
			Header: http.Header{"Foo": {"bar"}},
			Body:   []byte("foobar"),
		},
	})
	require.NoError(t, err)
	expected := "POST http://foo.com/bar\n" +
		"Foo: bar\n" +
		"\n" +
		"foobar\n" +
		"\n" +
		"HTTP/1.1 201 Created\n" +
		"A-Header: a\n" +
		"Content-Type: application/json\n" +
		"\n" +
		"{\n  \"s\": \"foobar\"\n}\n"
	require.Equal(t, expected, buf.String())
}

func TestPrintHeaders(t *testing.T) {
	p, buf := noColorPrinter()
	err := p.PrintHeaders(&model.Response{
		StatusCode:    404,
		StatusMessage: "Gone Fishing",
		Header:        http.Header{"X": {"1", "2"}},
		Body:          "not printed",
	})
	require.NoError(t, err)
	require.Equal(t, "HTTP 404 Gone Fishing\nX: 1\nX: 2\n", buf.String())
}

func TestPrintDocument(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		language string
		want     string
	}{
		{
			name:     "json is indented",
			content:  `{"a":1}`,
			language: "json",
			want:     "{\n  \"a\": 1\n}\n",
		},
		{
			name:     "invalid json is printed as is",
			content:  `{"a":`,
			language: "json",
			want:     "{\"a\":\n",
		},
		{
			name:     "plain text keeps trailing newline",
			content:  "hello\n",
			language: "plaintext",
			want:     "hello\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := noColorPrinter()
			require.NoError(t, p.PrintDocument([]byte(tt.content), tt.language))
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestInspect(t *testing.T) {
	p, buf := noColorPrinter()
	v := model.Inspect(map[string]interface{}{
		"list": []interface{}{1.0, nil},
		"name": "hit",
	})
	require.NoError(t, p.Inspect(v))
	expected := "{2}\n" +
		"  list: [2]\n" +
		"    0: 1\n" +
		"    1: null\n" +
		"  name: \"hit\"\n"
	require.Equal(t, expected, buf.String())
}

func TestStatus(t *testing.T) {
	p, _ := noColorPrinter()
	require.Equal(t, "200", p.Status(200))
}
