package ai

import "github.com/alexiscpa/legal-consultant/internal/model/chat"

// sourceSet accumulates citations de-duplicated by URI, keeping encounter
// order and the first-seen title for each URI.
type sourceSet struct {
	seen    map[string]struct{}
	ordered []chat.Source
}

func newSourceSet() *sourceSet {
	return &sourceSet{seen: make(map[string]struct{})}
}

func (s *sourceSet) add(sources []chat.Source) {
	for _, src := range sources {
		if src.URI == "" {
			continue
		}
		if _, ok := s.seen[src.URI]; ok {
			continue
		}
		s.seen[src.URI] = struct{}{}
		s.ordered = append(s.ordered, src)
	}
}

// list returns the running set. The slice is never nil so JSON encodes it as
// an empty array rather than null.
func (s *sourceSet) list() []chat.Source {
	out := make([]chat.Source, len(s.ordered))
	copy(out, s.ordered)
	return out
}
