package explore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FileEntry describes one entry found while scanning a directory.
type FileEntry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
}

// SearchMatch is one hit from a content search.
type SearchMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Workspace abstracts where the built-in filesystem tools operate, so agents
// can run against a local checkout, a remote snapshot, or an in-memory fake.
type Workspace interface {
	ReadFile(path string) (string, error)
	ListDirectory(path string) ([]FileEntry, error)
	Glob(pattern string) ([]string, error)
	Grep(pattern string, maxResults int) ([]SearchMatch, error)
	FileExists(path string) bool
	WorkingDirectory() string
}

// LocalWorkspace operates on a local directory tree.
type LocalWorkspace struct {
	root string
}

// NewLocalWorkspace creates a workspace rooted at root. An empty root uses
// the current working directory.
func NewLocalWorkspace(root string) *LocalWorkspace {
	if root == "" {
		root, _ = os.Getwd()
	}
	return &LocalWorkspace{root: root}
}

func (w *LocalWorkspace) WorkingDirectory() string { return w.root }

func (w *LocalWorkspace) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.root, path)
}

func (w *LocalWorkspace) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(w.resolve(path))
	if err != nil {
		return "", fmt.Errorf("read_file: %w", err)
	}
	return string(data), nil
}

func (w *LocalWorkspace) FileExists(path string) bool {
	_, err := os.Stat(w.resolve(path))
	return err == nil
}

func (w *LocalWorkspace) ListDirectory(path string) ([]FileEntry, error) {
	resolved := w.resolve(path)
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("list_directory: %w", err)
	}
	result := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		fe := FileEntry{
			Path:  filepath.Join(path, entry.Name()),
			IsDir: entry.IsDir(),
		}
		if info, err := entry.Info(); err == nil {
			fe.Size = info.Size()
		}
		result = append(result, fe)
	}
	return result, nil
}

func (w *LocalWorkspace) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(w.root, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if rel, err := filepath.Rel(w.root, m); err == nil {
			result = append(result, rel)
		} else {
			result = append(result, m)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Grep walks the tree and matches pattern against each line. Hidden
// directories and obviously binary files are skipped.
func (w *LocalWorkspace) Grep(pattern string, maxResults int) ([]SearchMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("search: invalid pattern: %w", err)
	}
	if maxResults <= 0 {
		maxResults = 100
	}

	var matches []SearchMatch
	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != w.root {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= maxResults {
			return filepath.SkipAll
		}
		data, err := os.ReadFile(path)
		if err != nil || strings.ContainsRune(string(data[:min(len(data), 1024)]), 0) {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}
		for i, line := range strings.Split(string(data), "\n") {
			if re.MatchString(line) {
				matches = append(matches, SearchMatch{Path: rel, Line: i + 1, Text: line})
				if len(matches) >= maxResults {
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return matches, nil
}

// MapWorkspace is an in-memory Workspace backed by a path -> content map.
// Intended for tests and hermetic demos.
type MapWorkspace struct {
	Files map[string]string
}

// NewMapWorkspace creates a MapWorkspace over the given files. Paths use
// forward slashes relative to the workspace root.
func NewMapWorkspace(files map[string]string) *MapWorkspace {
	if files == nil {
		files = make(map[string]string)
	}
	return &MapWorkspace{Files: files}
}

func (w *MapWorkspace) WorkingDirectory() string { return "." }

func (w *MapWorkspace) ReadFile(path string) (string, error) {
	content, ok := w.Files[path]
	if !ok {
		return "", fmt.Errorf("read_file: %s: file does not exist", path)
	}
	return content, nil
}

func (w *MapWorkspace) FileExists(path string) bool {
	_, ok := w.Files[path]
	return ok
}

func (w *MapWorkspace) ListDirectory(path string) ([]FileEntry, error) {
	prefix := ""
	if path != "" && path != "." {
		prefix = strings.TrimSuffix(path, "/") + "/"
	}

	seen := make(map[string]FileEntry)
	for file := range w.Files {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		rest := strings.TrimPrefix(file, prefix)
		if rest == "" {
			continue
		}
		if idx := strings.Index(rest, "/"); idx >= 0 {
			dir := prefix + rest[:idx]
			seen[dir] = FileEntry{Path: dir, IsDir: true}
		} else {
			seen[file] = FileEntry{Path: file, Size: int64(len(w.Files[file]))}
		}
	}
	if len(seen) == 0 && prefix != "" {
		return nil, fmt.Errorf("list_directory: %s: no such directory", path)
	}

	result := make([]FileEntry, 0, len(seen))
	for _, fe := range seen {
		result = append(result, fe)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

func (w *MapWorkspace) Glob(pattern string) ([]string, error) {
	var result []string
	for file := range w.Files {
		ok, err := filepath.Match(pattern, file)
		if err != nil {
			return nil, fmt.Errorf("glob: %w", err)
		}
		if ok {
			result = append(result, file)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (w *MapWorkspace) Grep(pattern string, maxResults int) ([]SearchMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("search: invalid pattern: %w", err)
	}
	if maxResults <= 0 {
		maxResults = 100
	}

	paths := make([]string, 0, len(w.Files))
	for file := range w.Files {
		paths = append(paths, file)
	}
	sort.Strings(paths)

	var matches []SearchMatch
	for _, file := range paths {
		for i, line := range strings.Split(w.Files[file], "\n") {
			if re.MatchString(line) {
				matches = append(matches, SearchMatch{Path: file, Line: i + 1, Text: line})
				if len(matches) >= maxResults {
					return matches, nil
				}
			}
		}
	}
	return matches, nil
}
