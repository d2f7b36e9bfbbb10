package utils

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"
)

const appName = "wiper"

func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// DataDir returns $XDG_DATA_HOME/wiper, falling back to ~/.local/share/wiper.
func DataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName)
	}
	return filepath.Join(HomeDir(), ".local", "share", appName)
}

// ConfigDir returns $XDG_CONFIG_HOME/wiper, falling back to ~/.config/wiper.
func ConfigDir() string {
	if cfgHome := os.Getenv("XDG_CONFIG_HOME"); cfgHome != "" {
		return filepath.Join(cfgHome, appName)
	}
	return filepath.Join(HomeDir(), ".config", appName)
}

// ExpandPath expands a leading ~ and returns a cleaned absolute path.
func ExpandPath(p string) (string, error) {
	if p == "~" {
		p = HomeDir()
	} else if strings.HasPrefix(p, "~/") {
		p = filepath.Join(HomeDir(), p[2:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CleanName returns the last element of path in NFC form. macOS file
// systems hand back decomposed names, which render as loose accents in a
// terminal.
func CleanName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if base == "." || base == string(filepath.Separator) {
		return path
	}
	return norm.NFC.String(base)
}

// ShortenName returns the last two elements of path ("parent/name").
func ShortenName(path string) string {
	clean := filepath.Clean(path)
	name := filepath.Base(clean)
	if name == "." || name == string(filepath.Separator) {
		return path
	}
	parent := filepath.Base(filepath.Dir(clean))
	if parent == "." || parent == string(filepath.Separator) {
		return norm.NFD.String(name)
	}
	return parent + "/" + norm.NFD.String(name)
}

// RelPath returns path relative to root for display, "." for root itself.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "" {
		return path
	}
	return rel
}

// TimeAgo renders t relative to now ("3 days ago", "now").
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
