// Package backend locates the Ghostscript executable used as both the
// rendering service (per-page extraction) and the composition service (merge).
package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"sync"

	perrors "git.home.luguber.info/inful/pagecrop/internal/errors"
)

// Locator resolves the backend binary path.
type Locator interface {
	Locate() (string, error)
}

// GhostscriptLocator searches an explicit override, then PATH, then well-known
// install locations for the current platform. The first result is cached.
type GhostscriptLocator struct {
	explicit string
	goos     string
	lookPath func(string) (string, error)
	glob     func(string) ([]string, error)
	isFile   func(string) bool

	once sync.Once
	path string
	err  error
}

// NewGhostscriptLocator returns a locator for the running platform. explicit
// may be empty.
func NewGhostscriptLocator(explicit string) *GhostscriptLocator {
	return &GhostscriptLocator{
		explicit: explicit,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		glob:     filepath.Glob,
		isFile: func(p string) bool {
			st, err := os.Stat(p)
			return err == nil && !st.IsDir()
		},
	}
}

// Locate returns the Ghostscript path or an error wrapping ErrBinaryNotFound.
func (l *GhostscriptLocator) Locate() (string, error) {
	l.once.Do(func() {
		l.path, l.err = l.resolve()
	})
	return l.path, l.err
}

func (l *GhostscriptLocator) resolve() (string, error) {
	if l.explicit != "" {
		if p, err := l.lookPath(l.explicit); err == nil {
			return p, nil
		}
		return "", perrors.BackendNotFound(fmt.Errorf("%w: configured binary %q is not executable", perrors.ErrBinaryNotFound, l.explicit))
	}
	for _, name := range l.candidates() {
		if p, err := l.lookPath(name); err == nil {
			return p, nil
		}
	}
	for _, pattern := range l.installPaths() {
		matches, err := l.glob(pattern)
		if err != nil {
			continue
		}
		sortNewestFirst(matches)
		for _, m := range matches {
			if l.isFile(m) {
				return m, nil
			}
		}
	}
	return "", perrors.BackendNotFound(fmt.Errorf("%w: searched PATH for %v", perrors.ErrBinaryNotFound, l.candidates()))
}

var installVersion = regexp.MustCompile(`gs(\d+)\.(\d+)(?:\.(\d+))?`)

// sortNewestFirst orders versioned install paths (".../gs10.03.1/...") by
// numeric version, newest first. Unversioned paths keep their order at the end.
func sortNewestFirst(paths []string) {
	slices.SortStableFunc(paths, func(a, b string) int {
		return slices.Compare(parseInstallVersion(b), parseInstallVersion(a))
	})
}

func parseInstallVersion(path string) []int {
	m := installVersion.FindStringSubmatch(path)
	if m == nil {
		return nil
	}
	v := make([]int, 0, 3)
	for _, part := range m[1:] {
		n, _ := strconv.Atoi(part)
		v = append(v, n)
	}
	return v
}

func (l *GhostscriptLocator) candidates() []string {
	if l.goos == "windows" {
		return []string{"gswin64c", "gswin32c", "gs"}
	}
	return []string{"gs"}
}

func (l *GhostscriptLocator) installPaths() []string {
	switch l.goos {
	case "windows":
		return []string{
			`C:\Program Files\gs\*\bin\gswin64c.exe`,
			`C:\Program Files (x86)\gs\*\bin\gswin32c.exe`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin/gs", "/usr/local/bin/gs", "/opt/local/bin/gs"}
	default:
		return []string{"/usr/bin/gs", "/usr/local/bin/gs", "/snap/bin/gs"}
	}
}

// Static is a Locator returning a fixed path; used by tests and the debug CLI.
type Static string

func (s Static) Locate() (string, error) {
	if s == "" {
		return "", perrors.BackendNotFound(perrors.ErrBinaryNotFound)
	}
	return string(s), nil
}
