package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/llegregam/isoplot/internal/utils"
)

const manifestFileName = "run.json"

// Artifact is one file produced by a run, relative to the run directory.
type Artifact struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Run represents one compute output directory persisted on disk.
type Run struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	DataPath     string     `json:"data_path"`
	TemplatePath string     `json:"template_path"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Artifacts    []Artifact `json:"artifacts"`

	// Not serialized: on-disk location of the run.json
	rootDir string `json:"-"`
}

// ValidateName rejects empty names and names with characters that are unsafe
// in file names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("run name is empty")
	}
	if r, ok := utils.SafeName(name); !ok {
		return fmt.Errorf("run name %q contains forbidden character %q", name, r)
	}
	return nil
}

// New constructs an in-memory run under root/name. Call Save() to persist.
func New(root, name, dataPath, templatePath string) (*Run, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Run{
		ID:           uuid.NewString(),
		Name:         name,
		DataPath:     dataPath,
		TemplatePath: templatePath,
		CreatedAt:    now,
		UpdatedAt:    now,
		rootDir:      filepath.Join(root, name),
	}, nil
}

// Load reads run.json from dir.
func Load(dir string) (*Run, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	r.rootDir = dir
	return &r, nil
}

// RootDir returns the on-disk run directory path.
func (r *Run) RootDir() string { return r.rootDir }

// Path joins elem onto the run directory.
func (r *Run) Path(elem ...string) string {
	return filepath.Join(append([]string{r.rootDir}, elem...)...)
}

// AddArtifact records a produced file. Paths inside the run directory are
// stored relative to it; an existing entry with the same path is replaced.
func (r *Run) AddArtifact(kind, path string) {
	if rel, err := filepath.Rel(r.rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	path = filepath.ToSlash(path)
	for i, a := range r.Artifacts {
		if a.Path == path {
			r.Artifacts[i].Kind = kind
			return
		}
	}
	r.Artifacts = append(r.Artifacts, Artifact{Kind: kind, Path: path})
	r.UpdatedAt = time.Now().UTC()
}

// Save writes run.json using atomic write.
func (r *Run) Save() error {
	if r.rootDir == "" {
		return errors.New("run root directory not set")
	}
	if err := utils.EnsureDir(r.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(r.rootDir, manifestFileName), data)
}

// List loads every run directly under root, newest first. Directories
// without a readable run.json are skipped.
func List(root string) ([]*Run, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}
	var runs []*Run
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		r, err := Load(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].Name < runs[j].Name
	})
	return runs, nil
}

// Find resolves a run from a name under root or from any path inside a run
// directory.
func Find(root, nameOrPath string) (*Run, error) {
	if ValidateName(nameOrPath) == nil {
		dir := filepath.Join(root, nameOrPath)
		if _, err := os.Stat(filepath.Join(dir, manifestFileName)); err == nil {
			return Load(dir)
		}
	}
	dir, err := utils.FindRunRoot(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", nameOrPath, err)
	}
	return Load(dir)
}
