package util

import (
	"errors"
	"fmt"
	"os"
)

// EnsureCacheDir creates the hitview cache directory if it does not exist
// yet and returns its path.
func EnsureCacheDir() (string, error) {
	userCacheDir, err := GetUserCacheDir()
	if err != nil {
		return "", err
	}
	if err = EnsureDir(userCacheDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create user cache dir: %w", err)
	}
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	if err = EnsureDir(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create hitview cache dir: %w", err)
	}
	return dir, nil
}

func EnsureDir(path string, perm os.FileMode) error {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err := os.Mkdir(path, perm)
			if err != nil && !errors.Is(err, os.ErrExist) {
				return err
			}
			return nil
		}
		return err
	}
	return nil
}
