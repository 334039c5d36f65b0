package exclude

import (
	"path"
	"sort"
	"strings"
)

// Set is a collection of user-excluded relative paths. An excluded path is
// frozen: the differ classifies it Skip regardless of content changes, and
// it is never removed from the target.
type Set struct {
	paths map[string]struct{}
}

// New creates a Set from the given relative paths
func New(paths ...string) *Set {
	s := &Set{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Normalize converts a relative path to the canonical forward-slash form
// used for history keys, exclusion keys, and diff actions.
func Normalize(relPath string) string {
	p := strings.ReplaceAll(relPath, "\\", "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}

// Add inserts a path into the set
func (s *Set) Add(relPath string) {
	relPath = Normalize(relPath)
	if relPath == "" || relPath == "." {
		return
	}
	s.paths[relPath] = struct{}{}
}

// Remove deletes a path from the set
func (s *Set) Remove(relPath string) {
	delete(s.paths, Normalize(relPath))
}

// Contains reports whether the path is excluded
func (s *Set) Contains(relPath string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[Normalize(relPath)]
	return ok
}

// Len returns the number of excluded paths
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns the excluded paths in sorted order
func (s *Set) Paths() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
