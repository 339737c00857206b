package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/plugfy/plugfy/internal/manifest"
	"github.com/plugfy/plugfy/internal/outcome"
)

// Installed is an extension directory found under the extensions root,
// enriched with its manifest when one is present.
type Installed struct {
	Name        string
	Dir         string
	Versions    []Candidate // highest first
	Description string
	Author      string
	Tags        []string
	Problems    []string // manifest or layout issues; the extension is still listed
}

// Highest returns the highest installed version, if any.
func (i Installed) Highest() (Candidate, bool) {
	if len(i.Versions) == 0 {
		return Candidate{}, false
	}
	return i.Versions[0], true
}

// DiscoverAll lists every extension directory under root. Directories
// without a Compiled subdirectory or without valid versions are still
// returned, with the reason recorded in Problems.
func DiscoverAll(root string) ([]Installed, error) {
	if !isDir(root) {
		return nil, outcome.New(outcome.RootNotFound, "Extensions directory '%s' not found.", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading extensions directory %s: %w", root, err)
	}

	var result []Installed
	for _, entry := range entries {
		if !entryIsDir(root, entry) {
			continue
		}
		result = append(result, inspect(filepath.Join(root, entry.Name()), entry.Name()))
	}
	return result, nil
}

func inspect(dir, name string) Installed {
	inst := Installed{Name: name, Dir: dir}

	compiledDir := filepath.Join(dir, CompiledDir)
	if !isDir(compiledDir) {
		inst.Problems = append(inst.Problems, "missing "+CompiledDir+" directory")
	} else {
		cands, err := ListCandidates(compiledDir)
		if err != nil {
			inst.Problems = append(inst.Problems, err.Error())
		}
		sort.SliceStable(cands, func(a, b int) bool {
			return cands[a].Version.Compare(cands[b].Version) > 0
		})
		inst.Versions = cands
		if err == nil && len(cands) == 0 {
			inst.Problems = append(inst.Problems, "no valid versions")
		}
	}

	m, err := manifest.Load(dir)
	if err != nil {
		inst.Problems = append(inst.Problems, err.Error())
		return inst
	}
	if m == nil {
		return inst
	}
	inst.Description = m.Description
	inst.Author = m.Author
	inst.Tags = m.Tags

	result, err := manifest.ValidateFile(filepath.Join(dir, manifest.FileName))
	if err != nil {
		inst.Problems = append(inst.Problems, err.Error())
	} else if !result.Valid {
		for _, issue := range result.Issues {
			inst.Problems = append(inst.Problems, manifest.FileName+" "+issue.String())
		}
	}
	if m.Name != "" && m.Name != name {
		inst.Problems = append(inst.Problems,
			fmt.Sprintf("%s name %q does not match directory %q", manifest.FileName, m.Name, name))
	}
	return inst
}
