package config

import (
	"os"
	"path/filepath"
)

// FindEnvTest searches the working directory and its parents for filename.
// If filename is empty, it searches for .env
func FindEnvTest(filename string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findUpwards(wd, filename)
}

func findUpwards(dir, filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", os.ErrNotExist
		}
		return filename, nil
	}
	for {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
