//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Materializer writes resolved bytes to a scratch directory.
// The file for a name is always dir/name and is overwritten on each call.
type Materializer struct {
	dir string
}

// NewMaterializer creates a materializer writing below dir, os.TempDir() when empty.
func NewMaterializer(dir string) *Materializer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Materializer{dir: dir}
}

// Dir returns the scratch directory.
func (m *Materializer) Dir() string {
	return m.dir
}

// ValidateName reports whether name can be used as an artifact and scratch file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return nil
}

// Materialize writes data to the scratch path of name and returns the path.
// The file is replaced atomically so concurrent readers never see partial content.
func (m *Materializer) Materialize(name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir %s: %w", m.dir, err)
	}
	path := filepath.Join(m.dir, name)

	// The temp name is independent of name so any name the filesystem accepts fits.
	tmp, err := os.CreateTemp(m.dir, ".scratch-*")
	if err != nil {
		return "", fmt.Errorf("create scratch file for %q: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write scratch file for %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close scratch file for %q: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("move scratch file to %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes a scratch file. A missing file is not an error.
func (m *Materializer) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove scratch file %s: %w", path, err)
	}
	return nil
}
