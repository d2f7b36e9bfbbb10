package scanner

// Summary is one segment of the per-root size breakdown.
type Summary struct {
	ID    string `json:"id"`
	Size  int64  `json:"size"`
	Label string `json:"label"`
}

// Summaries splits the scanned bytes into non-dependency and dependency
// totals, in that order.
func Summaries(finds []Find) []Summary {
	var modules, projects int64
	for _, f := range finds {
		modules += f.ModuleSize
		projects += f.ProjectSize - f.ModuleSize
	}
	return []Summary{
		{ID: "projects", Size: projects, Label: "Projects"},
		{ID: "node_modules", Size: modules, Label: "node_modules"},
	}
}

// ModulesSize returns the total dependency-directory bytes across finds.
func ModulesSize(finds []Find) int64 {
	var total int64
	for _, f := range finds {
		total += f.ModuleSize
	}
	return total
}

// ProjectsSize returns the total project bytes across finds, dependency
// directories included.
func ProjectsSize(finds []Find) int64 {
	var total int64
	for _, f := range finds {
		total += f.ProjectSize
	}
	return total
}
