package trash

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/lu-zhengda/wiper/internal/utils"
)

// Mover moves a path somewhere the user can recover it from.
type Mover interface {
	Trash(path string) error
}

// Default returns the Mover for the running platform.
func Default() Mover {
	if runtime.GOOS == "darwin" {
		return Finder{}
	}
	return Freedesktop{DataHome: dataHome()}
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".local", "share")
	}
	return filepath.Join(home, ".local", "share")
}

// Finder moves paths to the macOS Trash through Finder, so "Put Back" works.
type Finder struct{}

func (Finder) Trash(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	script := fmt.Sprintf(
		`tell application "Finder" to delete POSIX file %q`,
		absPath,
	)

	cmd := exec.Command("osascript", "-e", script)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to trash %s: %w (%s)", path, err, string(out))
	}
	return nil
}

// Freedesktop implements the XDG trash layout under DataHome/Trash. A path
// on another filesystem goes to the trash at the top of its own mount,
// $topdir/.Trash/$uid or $topdir/.Trash-$uid, so moves stay renames.
type Freedesktop struct {
	DataHome string
	Now      func() time.Time
}

func (f Freedesktop) Trash(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if _, err := os.Lstat(absPath); err != nil {
		return fmt.Errorf("failed to trash %s: %w", path, err)
	}

	err = f.moveInto(filepath.Join(f.DataHome, "Trash"), "", absPath)
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	top, terr := mountTop(absPath)
	if terr != nil {
		return errors.Join(err, terr)
	}
	dir, terr := topdirTrash(top)
	if terr != nil {
		return errors.Join(err, terr)
	}
	return f.moveInto(dir, top, absPath)
}

// moveInto renames absPath into trashDir/files and records it in
// trashDir/info. For a topdir trash the recorded path is relative to top.
func (f Freedesktop) moveInto(trashDir, top, absPath string) error {
	filesDir := filepath.Join(trashDir, "files")
	infoDir := filepath.Join(trashDir, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	recorded := absPath
	if top != "" {
		rel, err := filepath.Rel(top, absPath)
		if err != nil {
			return fmt.Errorf("failed to trash %s: %w", absPath, err)
		}
		recorded = filepath.ToSlash(rel)
	}

	name, info, err := f.reserve(infoDir, filesDir, filepath.Base(absPath))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(info, "[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		(&url.URL{Path: recorded}).EscapedPath(),
		f.now().Format("2006-01-02T15:04:05")); err != nil {
		info.Close()
		os.Remove(info.Name())
		return fmt.Errorf("failed to write trash info: %w", err)
	}
	if err := info.Close(); err != nil {
		os.Remove(info.Name())
		return fmt.Errorf("failed to write trash info: %w", err)
	}

	if err := os.Rename(absPath, filepath.Join(filesDir, name)); err != nil {
		os.Remove(info.Name())
		return fmt.Errorf("failed to trash %s: %w", absPath, err)
	}
	return nil
}

// mountTop returns the topmost ancestor of path on the same device.
func mountTop(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", err
	}
	id, ok := utils.StatFileID(info)
	if !ok {
		return "", fmt.Errorf("no device information for %s", path)
	}

	top := path
	for {
		parent := filepath.Dir(top)
		if parent == top {
			return top, nil
		}
		pi, err := os.Stat(parent)
		if err != nil {
			return "", err
		}
		if pid, ok := utils.StatFileID(pi); !ok || pid.Dev != id.Dev {
			return top, nil
		}
		top = parent
	}
}

// topdirTrash returns the trash directory for the mount at top, creating it
// when needed. A shared $top/.Trash is used only if it is a real directory
// with the sticky bit set.
func topdirTrash(top string) (string, error) {
	uid := strconv.Itoa(os.Getuid())

	shared := filepath.Join(top, ".Trash")
	if fi, err := os.Lstat(shared); err == nil && fi.IsDir() && fi.Mode()&os.ModeSticky != 0 {
		dir := filepath.Join(shared, uid)
		if err := os.Mkdir(dir, 0o700); err == nil || errors.Is(err, os.ErrExist) {
			if realDir(dir) == nil {
				return dir, nil
			}
		}
	}

	dir := filepath.Join(top, ".Trash-"+uid)
	if err := os.Mkdir(dir, 0o700); err != nil && !errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("failed to create trash directory: %w", err)
	}
	if err := realDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// realDir fails unless path is a directory and not a symlink.
func realDir(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("trash %s is not a directory", path)
	}
	return nil
}

// reserve claims a trash name by exclusively creating its .trashinfo file.
// Collisions get a numeric suffix: name, name.2, name.3, ...
func (f Freedesktop) reserve(infoDir, filesDir, base string) (string, *os.File, error) {
	for n := 1; n < 10000; n++ {
		name := base
		if n > 1 {
			name = base + "." + strconv.Itoa(n)
		}
		if _, err := os.Lstat(filepath.Join(filesDir, name)); err == nil {
			continue
		}
		info, err := os.OpenFile(filepath.Join(infoDir, name+".trashinfo"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("failed to create trash info: %w", err)
		}
		return name, info, nil
	}
	return "", nil, fmt.Errorf("no free trash name for %s", base)
}

func (f Freedesktop) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Permanent removes paths outright instead of trashing them.
type Permanent struct{}

func (Permanent) Trash(path string) error {
	return PermanentDelete(path)
}

func PermanentDelete(path string) error {
	return os.RemoveAll(path)
}
