package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const docExt = ".json"

// Dir is a Store that keeps one "<key>.json" file per key in a directory.
//
// Documents are indented to stay human readable and diff friendly. Writes go to
// a temporary file renamed over the previous document, so a crash never leaves
// a half written collection behind.
type Dir struct {
	path string
}

// OpenDir returns a Store rooted at path, creating the directory if needed.
func OpenDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("could not create data directory %q: %w", path, err)
	}
	return &Dir{path: path}, nil
}

// Path returns the data directory.
func (d *Dir) Path() string { return d.path }

func (d *Dir) filename(key string) string { return filepath.Join(d.path, key+docExt) }

func (d *Dir) Get(key string, v any) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	data, err := os.ReadFile(d.filename(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not read %q: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("corrupt document %q in %s: %w", key, d.path, err)
	}
	return true, nil
}

func (d *Dir) Set(key string, v any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", key, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(d.path, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("could not write %q: %w", key, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), d.filename(key)); err != nil {
		return fmt.Errorf("could not replace %q: %w", key, err)
	}
	return nil
}

func (d *Dir) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(d.filename(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove %q: %w", key, err)
	}
	return nil
}

func (d *Dir) Keys() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("could not list %s: %w", d.path, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, docExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, docExt))
	}
	slices.Sort(keys)
	return keys, nil
}
