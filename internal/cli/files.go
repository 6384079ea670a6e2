package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// expandPatterns resolves each of patterns as a glob, the plain stdlib way
// (DESIGN.md records why no third-party glob/loader library was a fit: the
// full cue/load-style package loader was dropped as out of scope, and
// nothing else available offers a loader worth adopting just for this).
// Patterns that are plain filenames
// with no glob metacharacters resolve to themselves even if the file does
// not (yet) exist, so a typo surfaces as a read error rather than a silent
// empty match.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pat, err)
		}
		if len(matches) == 0 {
			matches = []string{pat}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func readFiles(patterns []string) (map[string][]byte, []string, error) {
	files, err := expandPatterns(patterns)
	if err != nil {
		return nil, nil, err
	}
	contents := make(map[string][]byte, len(files))
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", f, err)
		}
		contents[f] = src
	}
	return contents, files, nil
}

// openOut opens the file named by the -o/--out flag, or stdout if unset. The
// returned closer is a no-op for stdout.
func openOut(cmd *Command) (w *os.File, closeFn func(), err error) {
	path := flagOutFile.String(cmd)
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
