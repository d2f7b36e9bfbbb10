package scanner

import "strings"

// NodeClassifier detects npm/yarn/pnpm projects: a directory holding a
// package.json or a node_modules directory.
type NodeClassifier struct{}

func (NodeClassifier) Type() ProjectType      { return Node }
func (NodeClassifier) DependencyDir() string { return "node_modules" }

func (NodeClassifier) IsMarker(name string) bool {
	return strings.HasSuffix(name, "package.json")
}
