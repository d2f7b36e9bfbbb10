package scanner

import (
	"path/filepath"
	"time"
)

// ProjectType tags which dependency-manager convention matched a project.
type ProjectType string

const (
	Node ProjectType = "Node"
)

// Find is a detected project directory.
type Find struct {
	ID           string      `json:"id"`
	Path         string      `json:"path"`
	ModuleSize   int64       `json:"module_size"`
	ProjectType  ProjectType `json:"project_type"`
	ProjectSize  int64       `json:"project_size"`
	LastModified time.Time   `json:"last_modified"`
}

// Classifier decides whether a directory is a project root based on the
// names of its direct children.
type Classifier interface {
	Type() ProjectType
	// DependencyDir is the child directory holding installed packages.
	// It is measured and never descended into.
	DependencyDir() string
	// IsMarker reports whether a child with this name marks its parent as
	// a project.
	IsMarker(name string) bool
}

// DefaultIgnore lists directory names the walker never enters.
var DefaultIgnore = []string{".git", ".next"}

// DependencyPath returns the dependency directory c expects inside f.
func DependencyPath(f Find, c Classifier) string {
	return filepath.Join(f.Path, c.DependencyDir())
}
