// Package discovery locates hook script files alongside a litua input
// file (§6 "Script discovery").
//
// Grounded on the teacher's getInputReader (cli/main.go): a small,
// explicit function over os/filepath rather than a generic file-walking
// abstraction, matching the scale of the problem.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// HookFiles returns the sorted list of files in inputPath's directory
// whose base name starts with "hooks", for the given scripting-runtime
// extensions (e.g. ".lua", ".js") — the caller decides which extensions
// its embedded runtime accepts; an empty extensions list matches any
// extension. Files are returned as absolute-or-as-given paths relative
// to inputPath's directory, in the directory's sorted order (§6).
func HookFiles(inputPath string, extensions []string) ([]string, error) {
	dir := filepath.Dir(inputPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "hooks") {
			continue
		}
		if len(extensions) > 0 && !hasAnyExt(name, extensions) {
			continue
		}
		matches = append(matches, filepath.Join(dir, name))
	}
	sort.Strings(matches)
	return matches, nil
}

func hasAnyExt(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}
