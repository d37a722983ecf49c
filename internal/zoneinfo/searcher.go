package zoneinfo

import (
	"strconv"
	"strings"
)

// Searcher filters the index for the zone picker. Results of the last query
// are reused while the query text is unchanged.
type Searcher struct {
	index     *Index
	lastQuery string
	found     []uint16
	valid     bool
}

func NewSearcher(index *Index) *Searcher {
	return &Searcher{index: index}
}

// Search returns ids whose duty name, zone name, content id or territory id
// contains query, case-insensitively. An empty query matches everything.
func (s *Searcher) Search(query string) []uint16 {
	q := strings.ToLower(strings.TrimSpace(query))
	if !s.valid || q != s.lastQuery {
		s.lastQuery = q
		s.found = s.rebuild(q)
		s.valid = true
	}
	out := make([]uint16, len(s.found))
	copy(out, s.found)
	return out
}

// Invalidate forces the next Search to rescan the index.
func (s *Searcher) Invalidate() {
	s.valid = false
}

func (s *Searcher) rebuild(q string) []uint16 {
	var found []uint16
	for _, z := range s.index.All() {
		if q == "" ||
			strings.Contains(strings.ToLower(z.DutyName), q) ||
			strings.Contains(strings.ToLower(z.ZoneName), q) ||
			strings.Contains(strconv.Itoa(int(z.ContentFinderConditionID)), q) ||
			strings.Contains(strconv.FormatUint(uint64(z.TerritoryTypeID), 10), q) {
			found = append(found, z.ContentFinderConditionID)
		}
	}
	return found
}
