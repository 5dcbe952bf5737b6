package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	cacheDir = "hitview"
	// DBFilename is the name of the history index inside the cache directory.
	DBFilename = "hitview.db"
)

func GetUserCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user's cache directory: %w", err)
	}
	return userCacheDir, nil
}

// CacheDir is the directory hitview keeps its global state in.
func CacheDir() (string, error) {
	userCacheDir, err := GetUserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, cacheDir), nil
}

func DefaultDBPath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DBFilename), nil
}
