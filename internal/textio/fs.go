// SPDX-License-Identifier: MPL-2.0

package textio

import (
	"errors"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/BlockOG/bundle-lua/pkg/bundle"
	"github.com/BlockOG/bundle-lua/pkg/fspath"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

// OutputPerm is the permission given to newly created bundle files.
const OutputPerm fs.FileMode = 0o644

// FS is the text loader and output writer used by the bundling service.
type FS struct {
	fs afero.Fs
}

// New wraps an afero filesystem.
func New(afs afero.Fs) *FS {
	return &FS{fs: afs}
}

// ReadText returns the full content of the file at path.
func (f *FS) ReadText(path types.FilesystemPath) (string, error) {
	data, err := afero.ReadFile(f.fs, string(path))
	if err != nil {
		return "", &bundle.IOError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

// Exists reports whether path names a regular file.
func (f *FS) Exists(path types.FilesystemPath) bool {
	info, err := f.fs.Stat(string(path))
	return err == nil && info.Mode().IsRegular()
}

// RequireFile verifies that path exists and is a regular file.
func (f *FS) RequireFile(role string, path types.FilesystemPath) error {
	info, err := f.fs.Stat(string(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &bundle.PathKindError{Role: role, Path: path, Want: bundle.KindFile}
	case err != nil:
		return &bundle.IOError{Op: "stat", Path: path, Err: err}
	case !info.Mode().IsRegular():
		return &bundle.PathKindError{Role: role, Path: path, Want: bundle.KindFile}
	}
	return nil
}

// RequireDir verifies that path exists and is a directory.
func (f *FS) RequireDir(role string, path types.FilesystemPath) error {
	isDir, err := afero.IsDir(f.fs, string(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &bundle.PathKindError{Role: role, Path: path, Want: bundle.KindDirectory}
	case err != nil:
		return &bundle.IOError{Op: "stat", Path: path, Err: err}
	case !isDir:
		return &bundle.PathKindError{Role: role, Path: path, Want: bundle.KindDirectory}
	}
	return nil
}

// RequireWritableTarget accepts a path that does not exist yet or that is a
// regular file. Anything else is rejected with a PathKindError.
func (f *FS) RequireWritableTarget(role string, path types.FilesystemPath) error {
	info, err := f.fs.Stat(string(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return &bundle.IOError{Op: "stat", Path: path, Err: err}
	case !info.Mode().IsRegular():
		return &bundle.PathKindError{Role: role, Path: path, Want: bundle.KindFile}
	}
	return nil
}

// Commit replaces the content of path with text. The destination is left
// untouched unless the whole text was written.
func (f *FS) Commit(path types.FilesystemPath, text string) (err error) {
	dir := fspath.Dir(path)
	tmp, err := afero.TempFile(f.fs, string(dir), fspath.Base(path)+".tmp.*")
	if err != nil {
		return &bundle.IOError{Op: "create temporary file for", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if err != nil {
			_ = f.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.WriteString(text); err != nil {
		return &bundle.IOError{Op: "write", Path: path, Err: err}
	}
	_ = tmp.Sync()
	if err = tmp.Close(); err != nil {
		return &bundle.IOError{Op: "write", Path: path, Err: err}
	}

	perm := OutputPerm
	if info, statErr := f.fs.Stat(string(path)); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err = f.fs.Chmod(tmpName, perm); err != nil {
		return &bundle.IOError{Op: "chmod", Path: path, Err: err}
	}
	if err = f.fs.Rename(tmpName, string(path)); err != nil {
		return &bundle.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
