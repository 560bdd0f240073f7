// Package staging materializes descriptor bundles in per-request scratch
// directories. Every deployment stages under its own directory named by the
// deployment ID, so concurrent requests cannot clobber each other's files.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metagate/metagate/domain/metadata"
	"github.com/metagate/metagate/ports"
)

// Dir stages bundles under a fixed root directory.
type Dir struct {
	root string
}

// New creates a stager rooted at the given directory. The root is created on
// first use, not here, so construction never touches the disk.
func New(root string) *Dir {
	return &Dir{root: root}
}

// Stage writes every file of the bundle under <root>/<id>/ and returns that
// directory's absolute path. The bundle's relative layout (manifest at the
// top, descriptors under objects/) is preserved.
func (d *Dir) Stage(id string, b metadata.Bundle) (string, error) {
	if id == "" {
		return "", fmt.Errorf("staging: empty deployment id")
	}

	dir, err := filepath.Abs(filepath.Join(d.root, id))
	if err != nil {
		return "", fmt.Errorf("staging: resolve %s: %w", id, err)
	}

	for _, f := range b.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("staging: create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.Body, 0o644); err != nil {
			return "", fmt.Errorf("staging: write %s: %w", path, err)
		}
	}

	return dir, nil
}

// Remove deletes a staged directory. It refuses paths outside the staging
// root: the dir argument round-trips through callers, and a bad join upstream
// must not turn into an unbounded delete.
func (d *Dir) Remove(dir string) error {
	root, err := filepath.Abs(d.root)
	if err != nil {
		return fmt.Errorf("staging: resolve root: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("staging: resolve %s: %w", dir, err)
	}
	if abs == root || !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return fmt.Errorf("staging: refusing to remove %s: outside staging root %s", abs, root)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("staging: remove %s: %w", abs, err)
	}
	return nil
}

// Ensure interface compliance.
var _ ports.Stager = (*Dir)(nil)
