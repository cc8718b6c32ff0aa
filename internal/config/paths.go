package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory (~/.bundlework).
// This is the source of truth for where global config lives.
// It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".bundlework"), nil
}

// GetDataFilePath returns the path to the sqlite database. An absolute
// "data.file" (Viper/env/flag) wins outright; a relative file name is
// joined onto the state directory, resolved in order:
// 1. "project.rootDir", when that directory exists
// 2. XDG_DATA_HOME/bundlework (if XDG_DATA_HOME is set)
// 3. Global fallback: ~/.bundlework
func GetDataFilePath() string {
	file := viper.GetString("data.file")
	if file == "" {
		file = DefaultDataFile
	}
	if filepath.IsAbs(file) {
		return file
	}

	root := viper.GetString("project.rootDir")
	if root == "" {
		root = DefaultRootDir
	}

	// A local project state directory allows per-project isolation when
	// running from within a project.
	if info, err := os.Stat(root); err == nil && info.IsDir() {
		return filepath.Join(root, file)
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "bundlework", file)
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return filepath.Join(root, file)
	}
	return filepath.Join(dir, file)
}

// GetExportsDir returns the directory bundle reports are written to.
// An absolute "project.exportsDir" overrides; otherwise reports land
// under the project root dir.
func GetExportsDir() string {
	dir := viper.GetString("project.exportsDir")
	if dir == "" {
		dir = DefaultExportsDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	root := viper.GetString("project.rootDir")
	if root == "" {
		root = DefaultRootDir
	}
	return filepath.Join(root, dir)
}
