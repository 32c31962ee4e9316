// Package config loads configuration from config.yaml and ALBERT_ environment
// variables, with env vars taking precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Research ServiceConfig  `koanf:"research"`
	TextGen  ServiceConfig  `koanf:"textgen"`
	ImageGen ServiceConfig  `koanf:"imagegen"`
	Segment  ServiceConfig  `koanf:"segment"`
	Storage  StorageConfig  `koanf:"storage"`
	Pipeline PipelineConfig `koanf:"pipeline"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// ServiceConfig configures one upstream service boundary.
type ServiceConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type StorageConfig struct {
	// Path is the SQLite database for the interaction log. Empty means the
	// log is kept in memory only.
	Path string `koanf:"path"`
}

type PipelineConfig struct {
	// CallTimeout is a duration string bounding each upstream call.
	CallTimeout string `koanf:"call_timeout"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads config.yaml (when present) and applies ALBERT_ env overrides.
// A double underscore in an env var name maps to a config path separator,
// e.g. ALBERT_SERVER__PORT=9090.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit file path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("ALBERT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "ALBERT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("pipeline.call_timeout") {
		k.Set("pipeline.call_timeout", "60s")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Research.APIKey = substituteEnvVars(cfg.Research.APIKey)
	cfg.TextGen.APIKey = substituteEnvVars(cfg.TextGen.APIKey)
	cfg.ImageGen.APIKey = substituteEnvVars(cfg.ImageGen.APIKey)
	cfg.Segment.APIKey = substituteEnvVars(cfg.Segment.APIKey)

	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
