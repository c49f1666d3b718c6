// Package templates ships the default configuration templates that install
// renders into the user's config directories.
package templates

import (
	"embed"
	"io/fs"
	"path"
	"sort"
)

//go:embed env/*.env config/*.container config/*.network
var files embed.FS

// EnvDir and UnitsDir are the embedded template subdirectories.
const (
	EnvDir   = "env"
	UnitsDir = "config"
)

// FS returns the embedded template filesystem.
func FS() fs.FS {
	return files
}

// EnvFileNames lists the shipped env templates, sorted by name.
func EnvFileNames() []string {
	return listDir(EnvDir)
}

// UnitFileNames lists the shipped systemd unit templates, sorted by name.
func UnitFileNames() []string {
	return listDir(UnitsDir)
}

// ReadEnv returns the contents of a shipped env template.
func ReadEnv(name string) ([]byte, error) {
	return files.ReadFile(path.Join(EnvDir, name))
}

// ReadUnit returns the contents of a shipped unit template.
func ReadUnit(name string) ([]byte, error) {
	return files.ReadFile(path.Join(UnitsDir, name))
}

func listDir(dir string) []string {
	entries, err := files.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
