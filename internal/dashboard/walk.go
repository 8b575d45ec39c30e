package dashboard

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conneroisu/dashvars/internal/errors"
	"github.com/conneroisu/dashvars/internal/validation"
)

// Walk collects dashboard files below paths. A path naming a file is taken
// as is. Directories are walked recursively and files are kept when their
// extension is in extensions and neither their base name nor their path
// matches an exclude pattern. The result is sorted and free of duplicates.
func Walk(paths, extensions, excludes []string) ([]string, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		cleanRoot, err := validation.ValidatePath(root)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(cleanRoot)
		if err != nil {
			return nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, "cannot stat scan path").
				WithLocation(root, 0)
		}
		if !info.IsDir() {
			add(cleanRoot)
			continue
		}

		err = filepath.WalkDir(cleanRoot, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if excluded(path, excludes) {
				if d.IsDir() && path != cleanRoot {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() || !allowed[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			add(path)
			return nil
		})
		if err != nil {
			return nil, errors.WrapIO(err, errors.ErrCodeInvalidPath, "cannot walk scan path").
				WithLocation(root, 0)
		}
	}

	sort.Strings(files)
	return files, nil
}

func excluded(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
