package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AlexZinkM/shardwallet/internal/model"
)

// ReadFile reads a wallet file, rejecting missing and empty files.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file does not exist: %s", model.ErrIO, path)
		}
		return nil, fmt.Errorf("%w: failed to stat file: %w", model.ErrIO, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: file is empty: %s", model.ErrFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file: %w", model.ErrIO, err)
	}
	return data, nil
}

// Exists reports whether something is at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// WriteFileAtomic writes data to a temp file next to path, syncs it, and then
// publishes it in one step. Without force an existing path is never touched
// and model.ErrAlreadyExists is returned. Readers never see a partial file.
func WriteFileAtomic(path string, data []byte, force bool) error {
	return WriteFilesAtomic([]string{path}, [][]byte{data}, force)
}

// WriteFilesAtomic publishes data[i] at paths[i] for every i, or leaves all
// paths as they were. All files are staged before the first one is
// published. Under force a replaced file is kept as a hard link until the
// whole set is published and is restored if a later path fails.
func WriteFilesAtomic(paths []string, data [][]byte, force bool) (err error) {
	if len(paths) != len(data) {
		return fmt.Errorf("have %d paths for %d files", len(paths), len(data))
	}
	for _, p := range paths {
		info, err := os.Lstat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("%w: failed to stat file: %w", model.ErrIO, err)
		case !force:
			return fmt.Errorf("%w: %s", model.ErrAlreadyExists, p)
		case !info.Mode().IsRegular():
			return fmt.Errorf("%w: not a regular file: %s", model.ErrIO, p)
		}
	}

	staged := make([]string, 0, len(paths))
	defer func() {
		// staged names are only links; remove them in every case
		for _, name := range staged {
			_ = os.Remove(name)
		}
	}()
	for i, p := range paths {
		name, err := stage(p, data[i])
		if err != nil {
			return err
		}
		staged = append(staged, name)
	}

	type publication struct {
		path   string
		backup string
	}
	var published []publication
	defer func() {
		if err == nil {
			for _, pub := range published {
				if pub.backup != "" {
					_ = os.Remove(pub.backup)
				}
			}
			return
		}
		for i := len(published) - 1; i >= 0; i-- {
			pub := published[i]
			if pub.backup != "" {
				_ = os.Rename(pub.backup, pub.path)
			} else {
				_ = os.Remove(pub.path)
			}
		}
	}()

	for i, p := range paths {
		if force && Exists(p) {
			backup := staged[i] + ".old"
			if err := os.Link(p, backup); err != nil {
				return fmt.Errorf("%w: failed to keep previous file: %w", model.ErrIO, err)
			}
			if err := os.Rename(staged[i], p); err != nil {
				_ = os.Remove(backup)
				return fmt.Errorf("%w: failed to replace file: %w", model.ErrIO, err)
			}
			published = append(published, publication{path: p, backup: backup})
			continue
		}

		// link fails instead of replacing when p appeared in the meantime
		if err := os.Link(staged[i], p); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%w: %s", model.ErrAlreadyExists, p)
			}
			return fmt.Errorf("%w: failed to create file: %w", model.ErrIO, err)
		}
		published = append(published, publication{path: p})
	}
	return nil
}

func stage(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create file: %w", model.ErrIO, err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: failed to write file: %w", model.ErrIO, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: failed to set permissions: %w", model.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: failed to sync file: %w", model.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: failed to close file: %w", model.ErrIO, err)
	}
	return name, nil
}
