package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/plugfy/plugfy/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// setupTree creates {root}/{ext}/Compiled/{v}/ for every version name.
func setupTree(t *testing.T, ext string, versions ...string) string {
	t.Helper()
	root := t.TempDir()
	compiled := filepath.Join(root, ext, CompiledDir)
	require.NoError(t, os.MkdirAll(compiled, 0o755))
	for _, v := range versions {
		require.NoError(t, os.MkdirAll(filepath.Join(compiled, v), 0o755))
	}
	return root
}

func TestResolve_SelectsHighestValidVersion(t *testing.T) {
	root := setupTree(t, "myext", "1.0", "2.3.1", "bad", "2.3.10")

	res, err := Resolve(root, "myext")
	require.NoError(t, err)
	assert.Equal(t, "2.3.10", res.Selected.Version.String())
	assert.Equal(t, filepath.Join(root, "myext", CompiledDir, "2.3.10"), res.Selected.Path)
	assert.Len(t, res.Candidates, 3)
}

func TestResolve_ExcludesNonNumericNames(t *testing.T) {
	root := setupTree(t, "myext", "1.x", "1.0.0")

	res, err := Resolve(root, "myext")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", res.Selected.Version.String())
	for _, c := range res.Candidates {
		assert.NotEqual(t, "1.x", c.Version.String())
	}
}

func TestResolve_IgnoresFiles(t *testing.T) {
	root := setupTree(t, "myext", "1.0.0")
	compiled := filepath.Join(root, "myext", CompiledDir)
	require.NoError(t, os.WriteFile(filepath.Join(compiled, "9.9.9"), []byte("x"), 0o644))

	res, err := Resolve(root, "myext")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", res.Selected.Version.String())
}

func TestResolve_FollowsSymlinkedVersions(t *testing.T) {
	root := setupTree(t, "myext", "1.0.0")
	compiled := filepath.Join(root, "myext", CompiledDir)
	target := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.MkdirAll(target, 0o755))
	if err := os.Symlink(target, filepath.Join(compiled, "2.0.0")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(compiled, "3.0.0")))

	res, err := Resolve(root, "myext")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", res.Selected.Version.String())
	assert.Equal(t, filepath.Join(compiled, "2.0.0"), res.Selected.Path)
	assert.Len(t, res.Candidates, 2)
}

func TestResolve_TieKeepsLexicallyFirst(t *testing.T) {
	root := setupTree(t, "myext", "1.2.0", "1.2")

	res, err := Resolve(root, "myext")
	require.NoError(t, err)
	assert.Equal(t, "1.2", res.Selected.Version.String())
}

func TestResolve_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) (root, ext string)
		kind  outcome.Kind
	}{
		{
			name: "missing root",
			setup: func(t *testing.T) (string, string) {
				return filepath.Join(t.TempDir(), "nope"), "myext"
			},
			kind: outcome.RootNotFound,
		},
		{
			name: "root is a file",
			setup: func(t *testing.T) (string, string) {
				p := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(p, nil, 0o644))
				return p, "myext"
			},
			kind: outcome.RootNotFound,
		},
		{
			name: "missing extension",
			setup: func(t *testing.T) (string, string) {
				return t.TempDir(), "myext"
			},
			kind: outcome.ExtensionNotFound,
		},
		{
			name: "extension name escapes root",
			setup: func(t *testing.T) (string, string) {
				root := setupTree(t, "myext", "1.0.0")
				return filepath.Join(root, "myext"), ".."
			},
			kind: outcome.ExtensionNotFound,
		},
		{
			name: "missing Compiled",
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "myext"), 0o755))
				return root, "myext"
			},
			kind: outcome.CompiledDirMissing,
		},
		{
			name: "no valid versions",
			setup: func(t *testing.T) (string, string) {
				return setupTree(t, "myext", "latest", "1.x", "v1.0"), "myext"
			},
			kind: outcome.NoValidVersions,
		},
		{
			name: "empty Compiled",
			setup: func(t *testing.T) (string, string) {
				return setupTree(t, "myext"), "myext"
			},
			kind: outcome.NoValidVersions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, ext := tt.setup(t)
			res, err := Resolve(root, ext)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.kind, outcome.KindOf(err), "error: %v", err)
		})
	}
}

func TestResolve_Messages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "myext"), 0o755))

	_, err := Resolve(root, "myext")
	want := "Compiled directory '" + filepath.Join(root, "myext", CompiledDir) + "' not found for extension 'myext'."
	assert.EqualError(t, err, want)
}

func TestResolve_WithConstraint(t *testing.T) {
	root := setupTree(t, "myext", "1.0.0", "1.4.2", "2.0.0")

	c, err := version.ParseConstraint("^1.0")
	require.NoError(t, err)
	res, err := Resolve(root, "myext", WithConstraint(c))
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", res.Selected.Version.String())

	c, err = version.ParseConstraint(">=3.0.0")
	require.NoError(t, err)
	_, err = Resolve(root, "myext", WithConstraint(c))
	assert.True(t, outcome.IsKind(err, outcome.NoValidVersions))
}

func TestSelectHighest_Empty(t *testing.T) {
	_, ok := SelectHighest(nil)
	assert.False(t, ok)
}

func TestSelectHighest_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		cands := make([]Candidate, n)
		for i := range cands {
			segs := rapid.SliceOfN(rapid.Uint64Range(0, 20), 1, 4).Draw(t, "segs")
			cands[i] = Candidate{Version: version.FromSegments(segs...)}
		}

		best, ok := SelectHighest(cands)
		if !ok {
			t.Fatal("SelectHighest reported no winner for a non-empty slice")
		}
		firstMax := -1
		for i, c := range cands {
			if c.Version.Compare(best.Version) > 0 {
				t.Fatalf("candidate %s is higher than winner %s", c.Version, best.Version)
			}
			if firstMax < 0 && c.Version.Compare(best.Version) == 0 {
				firstMax = i
			}
		}
		if cands[firstMax].Version.String() != best.Version.String() {
			t.Fatalf("winner %s is not the first maximal candidate %s", best.Version, cands[firstMax].Version)
		}
	})
}
