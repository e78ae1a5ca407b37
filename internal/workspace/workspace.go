package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// EnsureDirs creates every directory in dirs (relative to root) with the
// given mode. Existing directories are not an error; their mode is
// reasserted with Chmod so a second run converges instead of drifting.
//
// A path that exists but is not a directory is a hard error — silently
// shadowing a regular file with a volume mount would hide operator
// mistakes until container startup.
func EnsureDirs(root string, dirs []string, mode os.FileMode) error {
	for _, dir := range dirs {
		path := filepath.Join(root, dir)

		info, err := os.Stat(path)
		switch {
		case err == nil:
			if !info.IsDir() {
				return model.NewDeployError(model.KindWorkspace,
					fmt.Sprintf("%q exists but is not a directory", path))
			}
			// MkdirAll would leave an existing directory's mode untouched,
			// so reassert it explicitly.
			if err := os.Chmod(path, mode); err != nil {
				return model.WrapDeployError(model.KindWorkspace,
					fmt.Sprintf("failed to set mode on %q", path), err)
			}

		case os.IsNotExist(err):
			if err := os.MkdirAll(path, mode); err != nil {
				return model.WrapDeployError(model.KindWorkspace,
					fmt.Sprintf("failed to create directory %q", path), err)
			}
			// MkdirAll applies the process umask; Chmod guarantees the
			// configured mode regardless of the caller's umask.
			if err := os.Chmod(path, mode); err != nil {
				return model.WrapDeployError(model.KindWorkspace,
					fmt.Sprintf("failed to set mode on %q", path), err)
			}

		default:
			return model.WrapDeployError(model.KindWorkspace,
				fmt.Sprintf("failed to stat %q", path), err)
		}
	}

	return nil
}

// VerifyComposeFile checks that the compose file exists in root. The
// deploy command calls this before creating directories or touching
// containers, so running from the wrong directory has no side effects.
func VerifyComposeFile(root, composeFile string) error {
	path := filepath.Join(root, composeFile)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewDeployError(model.KindUsage,
				fmt.Sprintf("compose file %q not found — run voxdeploy from the directory containing it", composeFile))
		}
		return model.WrapDeployError(model.KindUsage,
			fmt.Sprintf("cannot access compose file %q", composeFile), err)
	}

	if info.IsDir() {
		return model.NewDeployError(model.KindUsage,
			fmt.Sprintf("%q is a directory, not a compose file", composeFile))
	}

	return nil
}
