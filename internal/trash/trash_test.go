package trash

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/lu-zhengda/wiper/internal/utils"
)

func newFreedesktop(t *testing.T) (Freedesktop, string) {
	t.Helper()
	home := t.TempDir()
	fixed := time.Date(2025, 4, 2, 9, 30, 0, 0, time.Local)
	return Freedesktop{DataHome: home, Now: func() time.Time { return fixed }}, home
}

func TestFreedesktop_Trash(t *testing.T) {
	f, home := newFreedesktop(t)
	src := filepath.Join(t.TempDir(), "app", "node_modules")
	if err := os.MkdirAll(filepath.Join(src, "dep"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := f.Trash(src); err != nil {
		t.Fatalf("Trash() error: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after Trash")
	}
	if _, err := os.Stat(filepath.Join(home, "Trash", "files", "node_modules", "dep")); err != nil {
		t.Errorf("trashed contents missing: %v", err)
	}

	info, err := os.ReadFile(filepath.Join(home, "Trash", "info", "node_modules.trashinfo"))
	if err != nil {
		t.Fatalf("reading trashinfo: %v", err)
	}
	text := string(info)
	if !strings.HasPrefix(text, "[Trash Info]\n") {
		t.Errorf("trashinfo missing header: %q", text)
	}
	if !strings.Contains(text, "Path="+src+"\n") {
		t.Errorf("trashinfo missing Path=%s: %q", src, text)
	}
	if !strings.Contains(text, "DeletionDate=2025-04-02T09:30:00\n") {
		t.Errorf("trashinfo has wrong DeletionDate: %q", text)
	}
}

func TestFreedesktop_NameCollision(t *testing.T) {
	f, home := newFreedesktop(t)
	base := t.TempDir()

	for _, proj := range []string{"a", "b", "c"} {
		src := filepath.Join(base, proj, "node_modules")
		if err := os.MkdirAll(src, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := f.Trash(src); err != nil {
			t.Fatalf("Trash(%s) error: %v", src, err)
		}
	}

	for _, name := range []string{"node_modules", "node_modules.2", "node_modules.3"} {
		if _, err := os.Stat(filepath.Join(home, "Trash", "files", name)); err != nil {
			t.Errorf("expected %s in trash: %v", name, err)
		}
		if _, err := os.Stat(filepath.Join(home, "Trash", "info", name+".trashinfo")); err != nil {
			t.Errorf("expected %s.trashinfo: %v", name, err)
		}
	}
}

func TestFreedesktop_EscapesPath(t *testing.T) {
	f, home := newFreedesktop(t)
	src := filepath.Join(t.TempDir(), "my app", "node_modules")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := f.Trash(src); err != nil {
		t.Fatalf("Trash() error: %v", err)
	}
	info, err := os.ReadFile(filepath.Join(home, "Trash", "info", "node_modules.trashinfo"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(info), "my%20app") {
		t.Errorf("expected escaped space in Path, got %q", info)
	}
}

func TestFreedesktop_MissingPath(t *testing.T) {
	f, home := newFreedesktop(t)
	if err := f.Trash(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing path")
	}
	entries, _ := os.ReadDir(filepath.Join(home, "Trash", "info"))
	if len(entries) != 0 {
		t.Errorf("no trashinfo should be left behind, found %d", len(entries))
	}
}

func TestTopdirTrash(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no topdir trash on windows")
	}
	uid := strconv.Itoa(os.Getuid())

	t.Run("private", func(t *testing.T) {
		top := t.TempDir()
		dir, err := topdirTrash(top)
		if err != nil {
			t.Fatalf("topdirTrash() error: %v", err)
		}
		if want := filepath.Join(top, ".Trash-"+uid); dir != want {
			t.Errorf("dir = %q, want %q", dir, want)
		}
		fi, err := os.Stat(dir)
		if err != nil {
			t.Fatal(err)
		}
		if perm := fi.Mode().Perm(); perm != 0o700 {
			t.Errorf("perm = %o, want 700", perm)
		}
	})

	t.Run("shared sticky", func(t *testing.T) {
		top := t.TempDir()
		shared := filepath.Join(top, ".Trash")
		if err := os.Mkdir(shared, 0o777); err != nil {
			t.Fatal(err)
		}
		if err := os.Chmod(shared, 0o777|os.ModeSticky); err != nil {
			t.Fatal(err)
		}
		dir, err := topdirTrash(top)
		if err != nil {
			t.Fatalf("topdirTrash() error: %v", err)
		}
		if want := filepath.Join(shared, uid); dir != want {
			t.Errorf("dir = %q, want %q", dir, want)
		}
	})

	t.Run("shared without sticky bit", func(t *testing.T) {
		top := t.TempDir()
		if err := os.Mkdir(filepath.Join(top, ".Trash"), 0o777); err != nil {
			t.Fatal(err)
		}
		dir, err := topdirTrash(top)
		if err != nil {
			t.Fatalf("topdirTrash() error: %v", err)
		}
		if want := filepath.Join(top, ".Trash-"+uid); dir != want {
			t.Errorf("dir = %q, want %q", dir, want)
		}
	})

	t.Run("symlinked trash rejected", func(t *testing.T) {
		top := t.TempDir()
		if err := os.Symlink(t.TempDir(), filepath.Join(top, ".Trash-"+uid)); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
		if _, err := topdirTrash(top); err == nil {
			t.Error("expected error for a symlinked trash directory")
		}
	})
}

func TestFreedesktop_MoveIntoTopdir(t *testing.T) {
	f, _ := newFreedesktop(t)
	top := t.TempDir()
	src := filepath.Join(top, "work", "app", "node_modules")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	trashDir := filepath.Join(top, ".Trash-1000")

	if err := f.moveInto(trashDir, top, src); err != nil {
		t.Fatalf("moveInto() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(trashDir, "files", "node_modules")); err != nil {
		t.Errorf("trashed directory missing: %v", err)
	}
	info, err := os.ReadFile(filepath.Join(trashDir, "info", "node_modules.trashinfo"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(info), "Path=work/app/node_modules\n") {
		t.Errorf("expected path relative to the mount top, got %q", info)
	}
}

func TestMountTop(t *testing.T) {
	dir := t.TempDir()
	info, err := os.Lstat(dir)
	if err != nil {
		t.Fatal(err)
	}
	id, ok := utils.StatFileID(info)
	if !ok {
		t.Skip("no device information on this platform")
	}

	top, err := mountTop(dir)
	if err != nil {
		t.Fatalf("mountTop() error: %v", err)
	}
	if !strings.HasPrefix(dir, top) {
		t.Errorf("mountTop(%q) = %q, want an ancestor", dir, top)
	}
	ti, err := os.Stat(top)
	if err != nil {
		t.Fatal(err)
	}
	if tid, _ := utils.StatFileID(ti); tid.Dev != id.Dev {
		t.Errorf("mount top is on device %d, want %d", tid.Dev, id.Dev)
	}
}

func TestFreedesktop_CrossDevice(t *testing.T) {
	home, err := os.MkdirTemp("/dev/shm", "wiper-trash-")
	if err != nil {
		t.Skipf("no second filesystem available: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(home) })

	src := filepath.Join(t.TempDir(), "app", "node_modules")
	if err := os.MkdirAll(filepath.Join(src, "dep"), 0o755); err != nil {
		t.Fatal(err)
	}
	hi, _ := os.Stat(home)
	si, _ := os.Stat(src)
	hid, ok1 := utils.StatFileID(hi)
	sid, ok2 := utils.StatFileID(si)
	if !ok1 || !ok2 || hid.Dev == sid.Dev {
		t.Skip("home trash and source share a filesystem")
	}
	top, err := mountTop(src)
	if err != nil {
		t.Fatal(err)
	}
	trashDir, err := topdirTrash(top)
	if err != nil {
		t.Skipf("mount top %s is not writable: %v", top, err)
	}

	f := Freedesktop{DataHome: home}
	if err := f.Trash(src); err != nil {
		t.Fatalf("Trash() error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after Trash")
	}

	rel, _ := filepath.Rel(top, src)
	entries, err := os.ReadDir(filepath.Join(trashDir, "info"))
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(trashDir, "info", e.Name()))
		if err != nil || !strings.Contains(string(data), "Path="+filepath.ToSlash(rel)+"\n") {
			continue
		}
		found = true
		name := strings.TrimSuffix(e.Name(), ".trashinfo")
		t.Cleanup(func() {
			os.RemoveAll(filepath.Join(trashDir, "files", name))
			os.Remove(filepath.Join(trashDir, "info", e.Name()))
		})
	}
	if !found {
		t.Errorf("no trashinfo for %s in %s", rel, trashDir)
	}
}

func TestPermanent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "node_modules")
	if err := os.MkdirAll(filepath.Join(dir, "x"), 0o755); err != nil {
		t.Fatal(err)
	}
	var m Mover = Permanent{}
	if err := m.Trash(dir); err != nil {
		t.Fatalf("Trash() error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory should be removed")
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	m := Default()
	if runtime.GOOS == "darwin" {
		if _, ok := m.(Finder); !ok {
			t.Errorf("Default() = %T, want Finder", m)
		}
		return
	}
	fd, ok := m.(Freedesktop)
	if !ok {
		t.Fatalf("Default() = %T, want Freedesktop", m)
	}
	if fd.DataHome != "/tmp/xdg-data" {
		t.Errorf("DataHome = %q, want /tmp/xdg-data", fd.DataHome)
	}
}
