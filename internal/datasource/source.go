// Package datasource finds and loads the cuelane project file.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daviddao/cuelane/internal/config"
)

const (
	defaultDir  = ".cuelane"
	defaultTOML = ".cuelane/cuelane.toml"
	defaultYAML = ".cuelane/cuelane.yaml"
)

// ErrNotFound means no project file was found; defaults apply.
var ErrNotFound = errors.New("no cuelane project file found")

// Discover finds the project file path.
// Priority: CUELANE_CONFIG env var > .cuelane/cuelane.{toml,yaml} in CWD > walk up parents.
func Discover() (string, error) {
	if env := os.Getenv("CUELANE_CONFIG"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", fmt.Errorf("CUELANE_CONFIG=%q: %w", env, os.ErrNotExist)
	}

	// Check CWD first.
	for _, rel := range []string{defaultTOML, defaultYAML} {
		if _, err := os.Stat(rel); err == nil {
			abs, err := filepath.Abs(rel)
			if err != nil {
				return "", fmt.Errorf("resolve absolute path for %s: %w", rel, err)
			}
			return abs, nil
		}
	}

	// Walk up parent directories.
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		for _, rel := range []string{defaultTOML, defaultYAML} {
			candidate := filepath.Join(dir, rel)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w (looked for %s in %s and its parents)", ErrNotFound, defaultTOML, defaultDir)
}

// Open loads the project file at path, or the discovered one when path is
// empty. Without any project file it returns the defaults and an empty path.
func Open(path string) (*config.Config, string, error) {
	if path == "" {
		found, err := Discover()
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return nil, "", err
		default:
			path = found
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", displayPath(path), err)
	}
	return cfg, path, nil
}

func displayPath(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
