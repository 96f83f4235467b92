package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	defaultExtension = "yaml"
	defaultTagName   = "yaml"

	// EnvPrefix is prepended to every environment override, e.g. CONSOLE_API_BASE_URL.
	EnvPrefix = "CONSOLE"
)

type Binder interface {
	Bind(v *viper.Viper) error
}

type Loader interface {
	Load(name, path, envPrefix string, binder Binder) (Settings, error)
}

var defaults = map[string]any{
	"app_name":                     "Catalog Admin",
	"env":                          "DEV",
	"log_level":                    "info",
	"server.address":               "127.0.0.1:8080",
	"api.base_url":                 "http://localhost:3000",
	"api.timeout":                  15 * time.Second,
	"api.jwks_url":                 "",
	"session.refresh_margin":       5 * time.Minute,
	"session.min_refresh_interval": 30 * time.Second,
	"session.required_role":        "super-admin",
	"storage.driver":               StorageDriverBolt,
	"storage.path":                 "./data/console.db",
	"storage.bucket":               "console",
	"storage.secret":               "",
	"cors.allowed_origins":         []string{},
	"cors.allowed_methods":         "",
	"cors.allowed_headers":         "",
}

type FileParts struct {
	FileName string
	Path     string
}

func ProcessConfigPath(configFile string) (FileParts, error) {
	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return FileParts{}, fmt.Errorf("convert to absolute path: %w", err)
	}

	fileName := filepath.Base(absolutePath)
	path := filepath.Dir(absolutePath)
	extension := filepath.Ext(fileName)

	if strings.ReplaceAll(strings.ToLower(extension), ".", "") != defaultExtension {
		return FileParts{}, fmt.Errorf("config file must have extension %s, got: %s", defaultExtension, extension)
	}

	return FileParts{
		FileName: fileName[:len(fileName)-len(extension)],
		Path:     path,
	}, nil
}

func NewFileSystemLoader() *FileSystemLoader {
	return &FileSystemLoader{}
}

type FileSystemLoader struct{}

// Load reads the named yaml file from path, falling back to defaults when the
// file does not exist. Environment variables override both.
func (fs *FileSystemLoader) Load(name, path, envPrefix string, b Binder) (Settings, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(path)
	v.SetConfigName(name)
	v.SetConfigType(defaultExtension)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if b != nil {
		if err := b.Bind(v); err != nil {
			return Settings{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var settings Settings
	err := v.Unmarshal(&settings, func(cfg *mapstructure.DecoderConfig) {
		cfg.TagName = defaultTagName
	})
	if err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return settings, nil
}

// Load resolves configFile, loads it and validates the result.
func Load(configFile string, b Binder) (Config, error) {
	fileParts, err := ProcessConfigPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("processing config path: %w", err)
	}

	settings, err := NewFileSystemLoader().Load(fileParts.FileName, fileParts.Path, EnvPrefix, b)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return settings, nil
}

type EnvBinder struct {
	binders map[string]string
}

func (e *EnvBinder) Bind(v *viper.Viper) error {
	for envVar, key := range e.binders {
		if err := v.BindEnv(key, envVar); err != nil {
			return fmt.Errorf("bind env var %s to key %s: %w", envVar, key, err)
		}
	}

	return nil
}

func NewEnvBinder(binders map[string]string) *EnvBinder {
	return &EnvBinder{
		binders: binders,
	}
}

// NewDefaultEnvBinder maps the unprefixed variables the console has always honoured.
func NewDefaultEnvBinder() *EnvBinder {
	return NewEnvBinder(map[string]string{
		"PORT":         "server.address",
		"APP_NAME":     "app_name",
		"ENV":          "env",
		"API_URL":      "api.base_url",
		"TOKEN_SECRET": "storage.secret",
	})
}
