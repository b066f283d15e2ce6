package eco

import "sync"

type recordKey struct {
	run   string
	asset string
	day   int64
}

// MemoryStore keeps records in a map. It backs the eco sink when no
// database path is configured.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[recordKey]*Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[recordKey]*Record)}
}

// Add merges r into the record of its run, asset and day.
func (s *MemoryStore) Add(r Record) error {
	d := Day(r.Date)
	k := recordKey{run: r.RunID, asset: r.Asset, day: d.Unix()}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[k]
	if !ok {
		rec = &Record{RunID: r.RunID, Asset: r.Asset, Date: d}
		s.recs[k] = rec
	}
	rec.Merge(r)
	return nil
}

// Query returns copies of the matching records in Sort order.
func (s *MemoryStore) Query(f Filter) ([]Record, error) {
	s.mu.Lock()
	var out []Record
	for _, r := range s.recs {
		if f.Match(*r) {
			out = append(out, *r)
		}
	}
	s.mu.Unlock()
	Sort(out)
	return out, nil
}
