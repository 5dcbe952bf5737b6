package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	configName = "hitview"
	envPrefix  = "HITVIEW"

	DefaultMaxHistoryItems = 50
)

// Load reads the configuration. An empty path searches for hitview.{yaml,toml,json}
// in the working directory and $HOME/.config/hitview; a missing file is not an
// error in that case. Environment variables (HITVIEW_STORAGE_MODE, ...)
// override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/hitview")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %v", err)
		}
	}
	return decode(v)
}

// Default returns the configuration made of defaults and environment
// overrides only.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("invalid default configuration: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		trimSliceHook(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.mode", string(StorageGlobal))
	v.SetDefault("storage.subPath", "responses")
	v.SetDefault("history.maxItems", DefaultMaxHistoryItems)
	v.SetDefault("response.viewMode", string(ViewPreview))
	v.SetDefault("response.viewContent", string(ContentBody))
	v.SetDefault("response.prettyPrint", false)
	v.SetDefault("response.preferredNameSources", []string{
		string(NameFromMetaData),
		string(NameFromResponseCount),
		string(NameFromStatusCodeAndURL),
	})
	v.SetDefault("response.extensionRecognition", []string{
		string(ExtensionFromURL),
		string(ExtensionFromMimeType),
		string(ExtensionFromRegex),
	})
	v.SetDefault("response.imageViewer", DefaultViewer)
	v.SetDefault("response.pdfViewer", DefaultViewer)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxSize", 10)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.compress", true)
	v.SetDefault("db.path", "")
	v.SetDefault("db.disabled", false)
}

// trimSliceHook drops blanks around comma separated list entries.
func trimSliceHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		values, ok := data.([]string)
		if !ok {
			return data, nil
		}
		res := make([]string, 0, len(values))
		for _, s := range values {
			s = strings.TrimSpace(s)
			if s != "" {
				res = append(res, s)
			}
		}
		return res, nil
	}
}
