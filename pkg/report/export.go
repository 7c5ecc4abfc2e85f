package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filename returns the download name for a finished report, derived from the
// topic with spaces replaced by underscores.
func Filename(topic string) string {
	return strings.ReplaceAll(topic, " ", "_") + "_report.md"
}

// Save writes the enhanced report into dir under Filename(topic), byte for
// byte, and returns the written path.
func Save(dir, topic, enhanced string) (string, error) {
	path := filepath.Join(dir, Filename(topic))
	if err := os.WriteFile(path, []byte(enhanced), 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}
