package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrNotFound is returned by Find when no ffmpeg binary is available.
var ErrNotFound = errors.New("ffmpeg not found")

// knownLocations are checked after PATH.
func knownLocations() []string {
	if runtime.GOOS == "windows" {
		var out []string
		for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "LOCALAPPDATA"} {
			if dir := os.Getenv(env); dir != "" {
				out = append(out, filepath.Join(dir, "ffmpeg", "bin", "ffmpeg.exe"))
			}
		}
		return append(out, `C:\ffmpeg\bin\ffmpeg.exe`)
	}
	return []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/opt/homebrew/bin/ffmpeg", "/snap/bin/ffmpeg"}
}

// Find resolves the ffmpeg executable. A configured path wins; otherwise
// PATH is searched, then a few common install locations.
func Find(configured string) (string, error) {
	if configured != "" {
		path, err := exec.LookPath(configured)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrNotFound, configured, err)
		}
		return path, nil
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	for _, candidate := range knownLocations() {
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}
