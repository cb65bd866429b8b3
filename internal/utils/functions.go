package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

func RenewOutputPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	index := 1
	for {
		outputPath = filepath.Join(dir, fmt.Sprintf("%s-(%d)%s", name, index, ext))
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			return outputPath
		}
		index++
	}
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// ReadDownloadList reads a YAML list of links for sequential processing.
func ReadDownloadList(filePath string) ([]DownloadEntry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %v", err)
	}
	var entries []DownloadEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %v", err)
	}
	var valid []DownloadEntry
	for i, entry := range entries {
		entry.Link = strings.TrimSpace(entry.Link)
		if entry.Link == "" {
			log.Warn().Str("op", "utils/functions").Msgf("skipping entry %d with empty link", i+1)
			continue
		}
		valid = append(valid, entry)
	}
	if len(valid) == 0 {
		return nil, ErrEmptyBatch
	}
	return valid, nil
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func FormatSpeed(bytes int64, elapsed float64) string {
	if elapsed == 0 {
		return "0 B/s"
	}
	bps := float64(bytes) / elapsed
	formatted := FormatBytes(uint64(bps))
	return formatted[:len(formatted)-1] + "B/s" // Slice off "B" and add "B/s"
}

// Clean removes partial artifact files left in the temp directory under dir.
func Clean(dir string) error {
	tempDir := filepath.Join(dir, TempDirName)
	files, err := os.ReadDir(tempDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, file := range files {
		filePath := filepath.Join(tempDir, file.Name())
		if strings.HasSuffix(file.Name(), ".part") {
			if err := os.Remove(filePath); err != nil {
				return err
			}
			log.Debug().Str("op", "utils/functions").Msgf("removed %s", filePath)
		}
	}
	remainingFiles, err := os.ReadDir(tempDir)
	if err != nil {
		return err
	}
	if len(remainingFiles) == 0 {
		if err := os.Remove(tempDir); err != nil {
			return err
		}
	}
	return nil
}
