package metaclient

import "sync"

type linkKey struct {
	catalog string
	id      string
}

// LinkStore remembers the most recently seen canonical source URL per
// catalog ID. Writes are last-writer-wins single-key upserts; entries are
// never evicted, which is acceptable at one write per scrape.
type LinkStore struct {
	mu    sync.RWMutex
	links map[linkKey]string
}

func NewLinkStore() *LinkStore {
	return &LinkStore{links: make(map[linkKey]string)}
}

func (s *LinkStore) Upsert(catalogKey, id, url string) {
	s.mu.Lock()
	s.links[linkKey{catalog: catalogKey, id: id}] = url
	s.mu.Unlock()
}

func (s *LinkStore) Lookup(catalogKey, id string) (string, bool) {
	s.mu.RLock()
	url, ok := s.links[linkKey{catalog: catalogKey, id: id}]
	s.mu.RUnlock()
	return url, ok
}

func (s *LinkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}
