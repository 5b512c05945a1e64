// Package config contains utilities for loading configs
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/go-playground/validator/v10"
)

const (
	configFilePath = "/data/ryori.yaml"
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

const (
	defaultInternalBaseURL = "http://backend:8080/api/v1"
	defaultPublicBaseURL   = "http://localhost:8080/api/v1"
	defaultMediaBaseURL    = "http://localhost:8080"
	defaultListenAddr      = ":3000"
)

// API holds the recipe store addresses. Server-side fetches made by
// this process use the internal address; addresses handed to the
// browser use the public one.
type API struct {
	InternalBaseURL string `yaml:"internal_base_url" validate:"url"`
	PublicBaseURL   string `yaml:"public_base_url" validate:"url"`
}

// Media holds the image host configuration. Recipe records embed
// server-relative image paths which are joined onto BaseURL; absolute
// image URLs are only rendered when their host is in AllowedHosts.
type Media struct {
	BaseURL      string   `yaml:"base_url" validate:"url"`
	AllowedHosts []string `yaml:"allowed_hosts" validate:"dive,hostname_rfc1123"`
}

type Config struct {
	API        API    `yaml:"api"`
	Media      Media  `yaml:"media"`
	ListenAddr string `yaml:"listen_addr" validate:"required"`
	Env        string `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitHostList(param string) []string {
	// "a.example,b.example" or "a.example b.example"
	param = strings.ReplaceAll(param, " ", ",")
	parts := strings.Split(param, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyDefaults(config *Config) {
	if config.Env == "" {
		config.Env = EnvDev
	}
	if config.ListenAddr == "" {
		config.ListenAddr = defaultListenAddr
	}
	if config.API.InternalBaseURL == "" {
		config.API.InternalBaseURL = defaultInternalBaseURL
	}
	if config.API.PublicBaseURL == "" {
		config.API.PublicBaseURL = defaultPublicBaseURL
	}
	if config.Media.BaseURL == "" {
		config.Media.BaseURL = defaultMediaBaseURL
	}
}

func loadConfigFromEnv() (Config, error) {
	conf := Config{
		Env:        loadWithDefault("ENV", EnvDev),
		ListenAddr: loadWithDefault("LISTEN_ADDR", defaultListenAddr),
		API: API{
			InternalBaseURL: loadWithDefault("INTERNAL_API_URL", defaultInternalBaseURL),
			PublicBaseURL:   loadWithDefault("PUBLIC_API_URL", defaultPublicBaseURL),
		},
		Media: Media{
			BaseURL:      loadWithDefault("MEDIA_BASE_URL", defaultMediaBaseURL),
			AllowedHosts: splitHostList(loadWithDefault("MEDIA_ALLOWED_HOSTS", "")),
		},
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(conf); err != nil {
		return conf, fmt.Errorf("validating config: %w", err)
	}

	return conf, nil
}

func loadConfigFromFile(path string) (Config, error) {
	// Read file
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	// Unmarshal into config
	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	// Validate config
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return config, nil
}

func configFileExists(path string) bool {
	f, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return !f.IsDir()
}

func LoadConfig() (Config, error) {
	if configFileExists(configFilePath) {
		return loadConfigFromFile(configFilePath)
	}

	return loadConfigFromEnv()
}
