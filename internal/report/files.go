package report

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// LatestLog is the name of the most recent report in the log directory.
const LatestLog = "latest.log"

// SaveLog writes content to dir/latest.log and returns its path. A previous
// latest.log is kept as ArrowTrader-<modification time>.log.
func SaveLog(dir, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	latest := filepath.Join(dir, LatestLog)
	if fi, err := os.Stat(latest); err == nil {
		rotated := filepath.Join(dir, RotatedName(fi.ModTime()))
		if err := os.Rename(latest, rotated); err != nil {
			return "", fmt.Errorf("rotate %s: %w", latest, err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", latest, err)
	}

	if err := os.WriteFile(latest, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", latest, err)
	}
	return latest, nil
}

// RotatedName is the archive name for a log last modified at t.
// Colons are replaced so the name is valid on every filesystem.
func RotatedName(t time.Time) string {
	stamp := strings.ReplaceAll(t.Format("2006-01-02T15:04:05"), ":", "-")
	return "ArrowTrader-" + stamp + ".log"
}

// Open shows path in the desktop's default viewer.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}
