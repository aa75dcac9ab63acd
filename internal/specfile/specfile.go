// Package specfile loads specification documents from disk.
package specfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
)

// DefaultName is the file looked up at the module root when no path is given.
const DefaultName = "openapi.json"

// Load reads a JSON or YAML document. An empty path resolves to DefaultPath.
func Load(path string) (*openapi3.T, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("specfile: read spec %q: %w", path, err)
	}
	return doc, nil
}

// DefaultPath returns openapi.json at the module root, or in the working directory outside a module.
func DefaultPath() (string, error) {
	root, err := FindModuleRoot(".")
	if err != nil {
		if root, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("specfile: resolve workspace root: %w", err)
		}
	}
	return filepath.Join(root, DefaultName), nil
}

// FindModuleRoot walks up from start to the nearest directory holding a go.mod.
func FindModuleRoot(start string) (string, error) {
	abspath, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	dir := abspath
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("specfile: go.mod not found above %s", start)
}
