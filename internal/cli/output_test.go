package cli

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lu-zhengda/wiper/internal/scanner"
)

// captureOutput redirects stdout via os.Pipe and returns whatever was written.
func captureOutput(fn func()) string {
	origStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout

	data, _ := io.ReadAll(r)
	return string(data)
}

// ---------------------------------------------------------------------------
// truncatePath
// ---------------------------------------------------------------------------

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		maxLen int
		want   string
	}{
		{
			name:   "short path unchanged",
			path:   "/tmp/foo",
			maxLen: 20,
			want:   "/tmp/foo",
		},
		{
			name:   "exact length unchanged",
			path:   "abcdefghij",
			maxLen: 10,
			want:   "abcdefghij",
		},
		{
			name:   "long path truncated",
			path:   "/Users/home/very/long/path/to/file.txt",
			maxLen: 20,
			want:   ".../path/to/file.txt",
		},
		{
			name:   "empty path",
			path:   "",
			maxLen: 10,
			want:   "",
		},
		{
			name:   "maxLen equals 4",
			path:   "abcdef",
			maxLen: 4,
			want:   "...f",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncatePath(tt.path, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.maxLen, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// printScanResults
// ---------------------------------------------------------------------------

func TestPrintScanResults_Empty(t *testing.T) {
	out := captureOutput(func() {
		printScanResults("/code", nil)
	})
	if !strings.Contains(out, "No projects found") {
		t.Errorf("expected 'No projects found', got %q", out)
	}
}

func TestPrintScanResults_AllClear(t *testing.T) {
	finds := []scanner.Find{
		{Path: "/code/a", ProjectSize: 100, LastModified: time.Now()},
	}
	out := captureOutput(func() {
		printScanResults("/code", finds)
	})
	if !strings.Contains(out, "All clear") {
		t.Errorf("expected 'All clear', got %q", out)
	}
}

func TestPrintScanResults_KeepsWalkOrder(t *testing.T) {
	finds := []scanner.Find{
		{Path: "/code/a/b", ModuleSize: 100, ProjectSize: 150},
		{Path: "/code/a", ModuleSize: 3000, ProjectSize: 3600},
		{Path: "/code/z", ModuleSize: 0, ProjectSize: 10},
	}
	out := captureOutput(func() {
		printScanResults("/code", finds)
	})

	ab := strings.Index(out, "a/b")
	a := strings.Index(out, "  a ")
	z := strings.Index(out, "  z ")
	if ab < 0 || a < 0 || z < 0 {
		t.Fatalf("expected all projects in output, got:\n%s", out)
	}
	if !(ab < a && a < z) {
		t.Errorf("expected walk order a/b, a, z; positions: %d %d %d", ab, a, z)
	}
	if !strings.Contains(out, "3.10KB of node_modules found in 3 projects") {
		t.Errorf("expected module total line, got:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// diffIndicator
// ---------------------------------------------------------------------------

func TestDiffIndicator(t *testing.T) {
	tests := []struct {
		delta int64
		want  string
	}{
		{1500, "+1.50KB"},
		{-200, "-200B"},
		{0, "no change"},
	}
	for _, tt := range tests {
		if got := diffIndicator(tt.delta); !strings.Contains(got, tt.want) {
			t.Errorf("diffIndicator(%d) = %q, want it to contain %q", tt.delta, got, tt.want)
		}
	}
}
