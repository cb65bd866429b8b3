package utils

import "time"

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       map[string]string
}

// DownloadEntry is one line of a batch file.
type DownloadEntry struct {
	Link      string `yaml:"link"`
	OutputDir string `yaml:"op,omitempty"`
}
