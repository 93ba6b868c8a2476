package audio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/pkg/utils"
)

// ManifestEntry is one line of a file list: a path and an optional label.
type ManifestEntry struct {
	Path  string
	Label string
}

// ParseManifest reads one entry per line. The first whitespace-separated
// field is the path, the rest of the line is the label. Blank lines and
// lines starting with '#' are skipped. Relative paths are joined to baseDir
// when it is non-empty.
func ParseManifest(r io.Reader, baseDir string) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		path, label := line, ""
		if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
			path, label = line[:i], line[i+1:]
		}
		if baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		entries = append(entries, ManifestEntry{Path: path, Label: strings.TrimSpace(label)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %v: %w", err, model.ErrIO)
	}
	return entries, nil
}

// ReadManifest parses the manifest at path, resolving relative entries
// against the manifest's directory.
func ReadManifest(path string) ([]ManifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %v: %w", path, err, model.ErrIO)
	}
	defer f.Close()
	return ParseManifest(f, filepath.Dir(path))
}

// WriteManifest writes entries as "<path> <label>" lines. Paths inside the
// manifest's directory are stored relative to it.
func WriteManifest(path string, entries []ManifestEntry) error {
	tmp, err := utils.CreateTemp(path)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, model.ErrIO)
	}
	tmpPath := tmp.Name()

	dir := filepath.Dir(path)
	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		p := e.Path
		if rel, err := filepath.Rel(dir, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
		if e.Label != "" {
			fmt.Fprintf(w, "%s %s\n", p, e.Label)
		} else {
			fmt.Fprintln(w, p)
		}
	}
	err = w.Flush()
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		utils.DeleteFile(tmpPath)
		return fmt.Errorf("writing manifest %s: %v: %w", path, err, model.ErrIO)
	}
	if err := utils.MoveFile(tmpPath, path); err != nil {
		utils.DeleteFile(tmpPath)
		return fmt.Errorf("%v: %w", err, model.ErrIO)
	}
	return nil
}
