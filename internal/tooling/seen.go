package tooling

import "strings"

// SeenSet is the run-scoped record of every name already announced in the
// tooling stream. It only grows during a run; Reset starts a new run.
// Names compare case-insensitively so "typescript" and the TypeScript
// config tool are one name. Not safe for concurrent use; give each run its
// own set.
type SeenSet struct {
	seen map[string]struct{}
}

// NewSeenSet returns an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// Reset forgets everything
func (s *SeenSet) Reset() {
	s.seen = make(map[string]struct{})
}

// Claim returns the names not seen before, in input order, and records
// them before returning.
func (s *SeenSet) Claim(names []string) []string {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}

	var fresh []string
	for _, n := range names {
		key := strings.ToLower(n)
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		fresh = append(fresh, n)
	}
	return fresh
}

// Has reports whether name was already claimed
func (s *SeenSet) Has(name string) bool {
	_, ok := s.seen[strings.ToLower(name)]
	return ok
}

// Len returns the number of claimed names
func (s *SeenSet) Len() int {
	return len(s.seen)
}
