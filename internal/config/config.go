// Package config loads the application configuration from a YAML file,
// falling back to usable defaults when no file exists.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Download DownloadConfig `yaml:"download"`
	Tools    ToolsConfig    `yaml:"tools"`
	Metadata MetadataConfig `yaml:"metadata"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DownloadConfig struct {
	Dir            string `yaml:"dir"`
	OutputTemplate string `yaml:"output_template"`
	Subtitles      bool   `yaml:"subtitles"`
	UseAria2c      bool   `yaml:"use_aria2c"`
}

type ToolsConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path"`
	YtDlpPath  string `yaml:"ytdlp_path"`
}

type MetadataConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		Download: DownloadConfig{
			Dir:            defaultDownloadDir(),
			OutputTemplate: "%(title)s.%(ext)s",
		},
		Metadata: MetadataConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// defaultDownloadDir is the user's Downloads directory, or the working
// directory when the home cannot be resolved.
func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// Load reads the configuration at path. A missing file is not an error; the
// defaults are returned so the application runs unconfigured.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
