package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// FindRunRoot attempts to find a directory containing a run.json by walking up.
// If the input path is a file, it starts from its directory.
func FindRunRoot(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = wd
	}
	info, err := os.Stat(start)
	if err != nil {
		return "", err
	}
	dir := start
	if !info.IsDir() {
		dir = filepath.Dir(start)
	}
	for {
		candidate := filepath.Join(dir, "run.json")
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}
	return "", errors.New("run root not found (run.json)")
}

// SafeName reports whether name can be used as a run or file stem.
// It returns the first forbidden character found, if any.
func SafeName(name string) (rune, bool) {
	for _, r := range name {
		switch r {
		case '*', '.', '"', '/', '\\', '[', ']', ':', ';', '|', ',':
			return r, false
		}
	}
	return 0, true
}

// FileStem replaces characters SafeName rejects, plus spaces, with "-".
func FileStem(name string) string {
	out := []rune(name)
	for i, r := range out {
		if _, ok := SafeName(string(r)); !ok || r == ' ' {
			out[i] = '-'
		}
	}
	return string(out)
}
