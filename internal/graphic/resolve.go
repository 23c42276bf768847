package graphic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/termcore/internal/block"
)

// ThemeAsset is the path that names the current theme file.
const ThemeAsset = "THEME"

// Resolver maps a block's asset path to a graphic file.
//
// Absolute paths are used as they are, ThemeAsset resolves to Theme and a
// bare file name is looked up in each Libs directory in order. Relative
// paths with a directory part never resolve.
type Resolver struct {
	Theme string
	Libs  []string
}

// DefaultLibs returns the object library directories: the user's
// ~/.terminology/objlib, then dataDir/objlib when dataDir is set.
func DefaultLibs(dataDir string) []string {
	var libs []string
	if home, err := os.UserHomeDir(); err == nil {
		libs = append(libs, filepath.Join(home, ".terminology", "objlib"))
	}
	if dataDir != "" {
		libs = append(libs, filepath.Join(dataDir, "objlib"))
	}
	return libs
}

// Resolve returns the file for path.
func (r Resolver) Resolve(path string) (string, error) {
	switch {
	case path == "":
		return "", block.ErrAssetNotFound
	case filepath.IsAbs(path):
		if isFile(path) {
			return path, nil
		}
	case path == ThemeAsset:
		if r.Theme != "" && isFile(r.Theme) {
			return r.Theme, nil
		}
	case !strings.ContainsRune(path, '/'):
		for _, dir := range r.Libs {
			p := filepath.Join(dir, path)
			if isFile(p) {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("resolve %q: %w", path, block.ErrAssetNotFound)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
