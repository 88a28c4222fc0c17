package walker

// Session tracks the item URLs processed during one walk. It is created at
// the start of a walk and dropped with it; nothing is persisted.
type Session struct {
	processed map[string]struct{}
}

// NewSession creates an empty Session.
func NewSession() *Session {
	return &Session{processed: make(map[string]struct{})}
}

// Add records url and reports whether it was new.
func (s *Session) Add(url string) bool {
	if _, ok := s.processed[url]; ok {
		return false
	}
	s.processed[url] = struct{}{}
	return true
}

// Seen reports whether url was already processed.
func (s *Session) Seen(url string) bool {
	_, ok := s.processed[url]
	return ok
}

// Len returns the number of processed items.
func (s *Session) Len() int {
	return len(s.processed)
}
