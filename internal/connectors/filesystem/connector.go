// Package filesystem provides the local upload directory as a document source.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.FileSource = (*Connector)(nil)

// dirPerm is used when creating a missing upload directory.
const dirPerm = 0o755

// Connector walks and reads files under a root directory.
type Connector struct{}

// New creates a filesystem connector.
func New() *Connector {
	return &Connector{}
}

// Walk visits every regular file under root at any depth. A missing root is
// created first. Unreadable subdirectories are skipped.
func (c *Connector) Walk(ctx context.Context, root string, fn driven.WalkFunc) error {
	if err := ensureDir(root); err != nil {
		return err
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			// Keep walking past entries that vanished or can't be listed
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		return fn(domain.FileInfo{
			Path:    path,
			Source:  filepath.ToSlash(rel),
			Name:    d.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	})
}

// ReadFile returns the raw bytes of a file.
func (c *Connector) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// ensureDir creates root if it does not exist and checks it is a directory.
func ensureDir(root string) error {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(root, dirPerm); err != nil {
			return fmt.Errorf("root path error: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", root)
	}
	return nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
