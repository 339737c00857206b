package resolver

import "github.com/plugfy/plugfy/internal/version"

// CompiledDir is the directory under each extension that holds one
// subdirectory per compiled version.
const CompiledDir = "Compiled"

// Candidate is a version directory whose name parsed as a version.
type Candidate struct {
	Path    string          // absolute or root-relative path to the version directory
	Version version.Version // parsed directory name
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	ExtensionName string
	ExtensionDir  string      // {root}/{name}
	CompiledDir   string      // {root}/{name}/Compiled
	Selected      Candidate   // highest eligible version
	Candidates    []Candidate // every valid version, in directory order
}
