package config

type StorageMode string

const (
	StorageNone      StorageMode = "none"
	StorageGlobal    StorageMode = "global"
	StorageFile      StorageMode = "file"
	StorageWorkspace StorageMode = "workspace"
)

type ViewMode string

const (
	ViewPreview ViewMode = "preview"
	ViewReuse   ViewMode = "reuse"
	ViewOpen    ViewMode = "open"
	ViewNone    ViewMode = "none"
)

// ViewContent selects what the preview strategy shows.
type ViewContent string

const (
	ContentBody     ViewContent = "body"
	ContentHeaders  ViewContent = "headers"
	ContentExchange ViewContent = "exchange"
)

type NameSource string

const (
	NameFromMetaData         NameSource = "metaData"
	NameFromResponseCount    NameSource = "responseCount"
	NameFromStatusCodeAndURL NameSource = "statusCodeAndUrl"
)

type ExtensionStrategy string

const (
	ExtensionFromMimeType ExtensionStrategy = "mimetype"
	ExtensionFromURL      ExtensionStrategy = "extension"
	ExtensionFromRegex    ExtensionStrategy = "regex"
)

// DefaultViewer asks the operating system for its default application.
const DefaultViewer = "default"

type Config struct {
	Storage  Storage  `mapstructure:"storage"`
	History  History  `mapstructure:"history"`
	Response Response `mapstructure:"response"`
	Log      Log      `mapstructure:"log"`
	DB       DB       `mapstructure:"db"`
}

type Storage struct {
	Mode    StorageMode `mapstructure:"mode"`
	SubPath string      `mapstructure:"subPath"`
}

type History struct {
	MaxItems int `mapstructure:"maxItems"`
}

type Response struct {
	ViewMode             ViewMode            `mapstructure:"viewMode"`
	ViewContent          ViewContent         `mapstructure:"viewContent"`
	PrettyPrint          bool                `mapstructure:"prettyPrint"`
	PreferredNameSources []NameSource        `mapstructure:"preferredNameSources"`
	ExtensionRecognition []ExtensionStrategy `mapstructure:"extensionRecognition"`
	ImageViewer          string              `mapstructure:"imageViewer"`
	PDFViewer            string              `mapstructure:"pdfViewer"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSize     int    `mapstructure:"maxSize"`
	MaxBackups  int    `mapstructure:"maxBackups"`
	Compress    bool   `mapstructure:"compress"`
}

type DB struct {
	// Path of the sqlite history index. Empty selects the user cache dir.
	Path     string `mapstructure:"path"`
	Disabled bool   `mapstructure:"disabled"`
}
