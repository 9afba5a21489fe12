package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetPath returns the path to the user's config directory.
func GetPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName)), nil
}

// LogDir returns the directory release builds write rotating logs into.
func LogDir() (string, error) {
	if runtime.GOOS == "windows" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cacheDir, LogWinSubDir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, LogSubDir), nil
}

// LogFile returns the log file path inside dir.
func LogFile(dir string) string {
	return filepath.Join(dir, strings.ToLower(AppName)+LogExt)
}

// DefaultStorageFolder is where exports go until the user picks a folder.
func DefaultStorageFolder() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(homeDir, "Pictures", AppName)
}
