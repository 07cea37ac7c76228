package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var exportExts = map[string]bool{
	".jsonl":  true,
	".ndjson": true,
}

// ScanPath discovers event export files. A file path is returned as-is;
// a directory is walked recursively for .jsonl and .ndjson files.
func ScanPath(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []DiscoveredFile{{Path: root, SizeBytes: info.Size(), ModTime: info.ModTime()}}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !exportExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		files = append(files, DiscoveredFile{
			Path:      path,
			SizeBytes: fi.Size(),
			ModTime:   fi.ModTime(),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}
