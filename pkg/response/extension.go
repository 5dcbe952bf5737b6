package response

import (
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/hbagdi/hitview/pkg/model"
	"github.com/tidwall/gjson"
)

const defaultExtension = "txt"

var mimeExtensions = map[string]string{
	"application/json":         "json",
	"application/problem+json": "json",
	"application/ld+json":      "json",
	"application/hal+json":     "json",
	"application/xml":          "xml",
	"text/xml":                 "xml",
	"application/problem+xml":  "xml",
	"text/html":                "html",
	"application/xhtml+xml":    "html",
	"text/css":                 "css",
	"text/csv":                 "csv",
	"text/markdown":            "md",
	"text/plain":               "txt",
	"text/javascript":          "js",
	"application/javascript":   "js",
	"application/x-yaml":       "yaml",
	"application/yaml":         "yaml",
	"text/yaml":                "yaml",
	"application/graphql":      "graphql",
	"application/pdf":          "pdf",
	"application/zip":          "zip",
	"application/gzip":         "gz",
	"application/octet-stream": "bin",
	"image/png":                "png",
	"image/jpeg":               "jpg",
	"image/gif":                "gif",
	"image/svg+xml":            "svg",
	"image/webp":               "webp",
	"image/x-icon":             "ico",
}

var (
	urlSuffix = regexp.MustCompile(`^\.([a-zA-Z0-9]{1,5})$`)

	contentTypePatterns = []struct {
		pattern   *regexp.Regexp
		extension string
	}{
		{regexp.MustCompile(`(?i)[/+]json\b`), "json"},
		{regexp.MustCompile(`(?i)[/+]xml\b`), "xml"},
		{regexp.MustCompile(`(?i)html`), "html"},
		{regexp.MustCompile(`(?i)javascript|ecmascript`), "js"},
		{regexp.MustCompile(`(?i)/css\b`), "css"},
		{regexp.MustCompile(`(?i)yaml`), "yaml"},
		{regexp.MustCompile(`(?i)/csv\b`), "csv"},
		{regexp.MustCompile(`(?i)graphql`), "graphql"},
	}
	imageType = regexp.MustCompile(`(?i)^image/([a-z0-9]+)`)
)

// mediaType strips parameters from a content-type value.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
		mt = strings.TrimSpace(mt)
	}
	return strings.ToLower(mt)
}

func contentTypeOf(resp *model.Response) string {
	if resp == nil {
		return ""
	}
	if resp.ContentType != "" {
		return resp.ContentType
	}
	return resp.Header.Get("content-type")
}

func deriveExtension(resp *model.Response, region *model.Region,
	strategies []config.ExtensionStrategy,
) string {
	if ext, ok := region.Meta(metaExtension); ok && ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	contentType := contentTypeOf(resp)
	for _, s := range strategies {
		var ext string
		switch s {
		case config.ExtensionFromURL:
			ext = extensionFromURL(resp)
		case config.ExtensionFromMimeType:
			ext = extensionFromMimeType(contentType)
		case config.ExtensionFromRegex:
			ext = extensionFromRegex(contentType)
		}
		if ext != "" {
			return ext
		}
	}
	if resp != nil && len(resp.RawBody) > 0 && gjson.ValidBytes(resp.RawBody) {
		return "json"
	}
	return defaultExtension
}

func extensionFromURL(resp *model.Response) string {
	if resp == nil {
		return ""
	}
	u, ok := resp.Request.ParsedURL()
	if !ok {
		return ""
	}
	m := urlSuffix.FindStringSubmatch(path.Ext(u.Path))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func extensionFromMimeType(contentType string) string {
	mt := mediaType(contentType)
	if mt == "" {
		return ""
	}
	if ext, ok := mimeExtensions[mt]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mt)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return strings.TrimPrefix(exts[0], ".")
}

func extensionFromRegex(contentType string) string {
	if contentType == "" {
		return ""
	}
	if m := imageType.FindStringSubmatch(contentType); m != nil {
		ext := strings.ToLower(m[1])
		if ext == "jpeg" {
			return "jpg"
		}
		return ext
	}
	for _, p := range contentTypePatterns {
		if p.pattern.MatchString(contentType) {
			return p.extension
		}
	}
	return ""
}

// languageByExtension maps file extensions to editor language ids.
var languageByExtension = map[string]string{
	"json":    "json",
	"xml":     "xml",
	"html":    "html",
	"css":     "css",
	"csv":     "csv",
	"md":      "markdown",
	"js":      "javascript",
	"yaml":    "yaml",
	"graphql": "graphql",
	"http":    "http",
	"svg":     "xml",
}

// Language returns the editor language for a file extension.
func Language(extension string) string {
	if l, ok := languageByExtension[extension]; ok {
		return l
	}
	return "plaintext"
}
