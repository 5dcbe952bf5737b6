package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) Validate() error {
	switch c.Storage.Mode {
	case StorageNone, StorageGlobal, StorageFile, StorageWorkspace:
	default:
		return fmt.Errorf("invalid storage.mode '%v'", c.Storage.Mode)
	}
	if err := validateSubPath(c.Storage.SubPath); err != nil {
		return err
	}
	if c.History.MaxItems <= 0 {
		return fmt.Errorf("history.maxItems must be greater than 0, got %d",
			c.History.MaxItems)
	}
	return c.Response.Validate()
}

func (r *Response) Validate() error {
	switch r.ViewMode {
	case ViewPreview, ViewReuse, ViewOpen, ViewNone:
	default:
		return fmt.Errorf("invalid response.viewMode '%v'", r.ViewMode)
	}
	switch r.ViewContent {
	case ContentBody, ContentHeaders, ContentExchange:
	default:
		return fmt.Errorf("invalid response.viewContent '%v'", r.ViewContent)
	}
	for _, s := range r.PreferredNameSources {
		switch s {
		case NameFromMetaData, NameFromResponseCount, NameFromStatusCodeAndURL:
		default:
			return fmt.Errorf("invalid response.preferredNameSources entry '%v'", s)
		}
	}
	for _, s := range r.ExtensionRecognition {
		switch s {
		case ExtensionFromMimeType, ExtensionFromURL, ExtensionFromRegex:
		default:
			return fmt.Errorf("invalid response.extensionRecognition entry '%v'", s)
		}
	}
	return nil
}

// validateSubPath accepts relative directories strictly below the anchor.
// Empty selects the default directory.
func validateSubPath(sub string) error {
	if sub == "" {
		return nil
	}
	clean := filepath.Clean(sub)
	switch {
	case filepath.IsAbs(clean):
		return fmt.Errorf("storage.subPath must be relative: '%v'", sub)
	case clean == ".":
		return fmt.Errorf("storage.subPath must name a directory below the base: '%v'", sub)
	case clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)):
		return fmt.Errorf("storage.subPath must not leave the base directory: '%v'", sub)
	}
	return nil
}
