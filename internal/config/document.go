package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the optional YAML configuration file. Every field has a
// default, so a missing file is not an error.
type Document struct {
	Server   ServerConfig   `yaml:"server"`
	Reddit   RedditConfig   `yaml:"reddit"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type RedditConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// DefaultsConfig holds the filter defaults applied when a request omits the
// corresponding parameter.
type DefaultsConfig struct {
	Limit int     `yaml:"limit"`
	Hours float64 `yaml:"hours"`
}

// LoadDocument returns the built-in defaults, overlaid with the YAML file at
// path when one exists.
func LoadDocument(path string) (*Document, error) {
	doc := &Document{
		Server: ServerConfig{
			Port: "3001",
			Host: "0.0.0.0",
		},
		Reddit: RedditConfig{
			BaseURL:   "https://www.reddit.com",
			UserAgent: DefaultUserAgent,
		},
		Defaults: DefaultsConfig{
			Limit: 25,
			Hours: 24,
		},
	}

	if path == "" {
		return doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse proxy config: %w", err)
	}
	return doc, nil
}
