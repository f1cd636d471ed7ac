package templates

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadError reports a template file that could not be parsed.
type LoadError struct {
	// FileName is the base name of the offending file.
	FileName string

	// Err is the parse error.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("template %s: %v", e.FileName, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadDir loads every .json template from the folder, in file-name order.
// Filesystem enumeration order is not stable across platforms, so the
// sort is explicit: it fixes which template receives which sequence
// number.
//
// Malformed files are returned as LoadErrors alongside the templates that
// did parse; only a missing or unreadable folder is a hard error.
func LoadDir(dir string) ([]Template, []*LoadError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read templates folder %q: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	logger := slog.Default().With("component", "templates")

	var loaded []Template
	var loadErrs []*LoadError
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			loadErrs = append(loadErrs, &LoadError{FileName: name, Err: err})
			logger.Warn("skipping unreadable template", "file", name, "error", err)
			continue
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			loadErrs = append(loadErrs, &LoadError{FileName: name, Err: err})
			logger.Warn("skipping malformed template", "file", name, "error", err)
			continue
		}

		loaded = append(loaded, Template{FileName: name, Document: doc})
	}

	logger.Debug("templates loaded", "dir", dir, "count", len(loaded), "skipped", len(loadErrs))
	return loaded, loadErrs, nil
}
