// Package golden runs table-driven tests whose table lives in the file
// system: every input file under a root directory is one case, and each of
// its expected outputs sits next to it with an extra extension.
package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus describes a directory of test cases.
type Corpus struct {
	// Root is relative to the file that calls Run.
	Root string

	// Refresh names an environment variable holding a glob. Cases whose
	// name matches it get their outputs rewritten instead of compared.
	Refresh string

	// Extension selects the input files, without the dot.
	Extension string

	// Outputs are found at <input>.<Output.Extension>. A missing file is an
	// expected empty output.
	Outputs []Output
}

// Output is one expected result of a case.
type Output struct {
	Extension string
	// Compare defaults to a byte-for-byte comparison with a unified diff.
	Compare Compare
}

// Compare returns "" when got matches want, or a message describing the
// difference.
type Compare func(got, want string) string

// Run calls test for every case and checks its results, one per Output.
func (c Corpus) Run(t *testing.T, test func(t *testing.T, path, text string) []string) {
	t.Helper()
	testDir := callerDir(0)
	root := filepath.Join(testDir, c.Root)

	var cases []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.TrimPrefix(filepath.Ext(p), ".") == c.Extension {
			cases = append(cases, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("golden: walk %s: %v", root, err)
	}
	if len(cases) == 0 {
		t.Fatalf("golden: no .%s files below %s", c.Extension, root)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("golden: invalid glob in %s: %q", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		t.Logf("golden: refreshing outputs matching %s=%s", c.Refresh, refresh)
	}

	for _, path := range cases {
		name, _ := filepath.Rel(testDir, path)
		t.Run(filepath.ToSlash(name), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("golden: read %s: %v", path, err)
			}
			results := test(t, name, string(data))
			if len(results) != len(c.Outputs) {
				t.Fatalf("golden: test returned %d results for %d outputs", len(results), len(c.Outputs))
			}

			update := false
			if refresh != "" {
				update, _ = doublestar.Match(refresh, filepath.ToSlash(name))
			}
			for i, output := range c.Outputs {
				file := fmt.Sprint(path, ".", output.Extension)
				if update {
					write(t, file, results[i])
					continue
				}
				want, err := os.ReadFile(file)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("golden: read %s: %v", file, err)
					continue
				}
				cmp := output.Compare
				if cmp == nil {
					cmp = Diff
				}
				if msg := cmp(results[i], string(want)); msg != "" {
					t.Errorf("output mismatch for %s:\n%s", file, msg)
				}
			}
		})
	}
}

func write(t *testing.T, file, content string) {
	t.Helper()
	if content == "" {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Errorf("golden: remove %s: %v", file, err)
		}
		return
	}
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Errorf("golden: write %s: %v", file, err)
	}
}

// Diff is the default Compare.
func Diff(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("golden: could not determine the caller's directory")
	}
	return filepath.Dir(file)
}
