package transcript

import (
	"strings"
	"sync"
	"unicode"
)

// Span is a contiguous piece of one segment's decoded text, tagged as a
// match or not. Ordinal is the match's global position across the whole
// transcript, or -1 for non-matching text.
type Span struct {
	Text    string `json:"text"`
	Match   bool   `json:"match"`
	Ordinal int    `json:"ordinal"`
}

// Match locates one occurrence of the query. Offset and Length count runes
// in the segment's decoded text.
type Match struct {
	SegmentIndex int `json:"segmentIndex"`
	Offset       int `json:"offset"`
	Length       int `json:"length"`
	Ordinal      int `json:"ordinal"`
}

// Index is the result of searching a transcript for one query.
type Index struct {
	Query   string
	Matches []Match
	// Spans holds, per segment, the ordered spans that make up its text.
	Spans [][]Span
}

// Count returns the number of matches.
func (ix *Index) Count() int {
	if ix == nil {
		return 0
	}
	return len(ix.Matches)
}

// BuildIndex finds every non-overlapping, leftmost-first occurrence of
// query in the decoded segment text. Matching is case-insensitive and the
// query is trimmed; an empty query produces an index with no matches where
// every segment is a single non-matching span. Ordinals are assigned by one
// forward scan: segments in order, left to right within a segment.
func BuildIndex(segments []Segment, query string) *Index {
	query = strings.TrimSpace(query)
	ix := &Index{Query: query, Spans: make([][]Span, len(segments))}

	needle := foldRunes(query)
	ordinal := 0
	for i, seg := range segments {
		text := []rune(DecodeEntities(seg.Text))
		if len(needle) == 0 {
			ix.Spans[i] = []Span{{Text: string(text), Ordinal: -1}}
			continue
		}

		hay := foldRunesOf(text)
		var spans []Span
		last := 0
		for pos := 0; pos+len(needle) <= len(hay); {
			if !hasPrefixAt(hay, needle, pos) {
				pos++
				continue
			}
			if pos > last {
				spans = append(spans, Span{Text: string(text[last:pos]), Ordinal: -1})
			}
			spans = append(spans, Span{Text: string(text[pos : pos+len(needle)]), Match: true, Ordinal: ordinal})
			ix.Matches = append(ix.Matches, Match{SegmentIndex: i, Offset: pos, Length: len(needle), Ordinal: ordinal})
			ordinal++
			pos += len(needle)
			last = pos
		}
		if last < len(text) || len(spans) == 0 {
			spans = append(spans, Span{Text: string(text[last:]), Ordinal: -1})
		}
		ix.Spans[i] = spans
	}

	return ix
}

func foldRunes(s string) []rune {
	return foldRunesOf([]rune(s))
}

// foldRunesOf lower-cases rune by rune so folded offsets line up with the
// original text.
func foldRunesOf(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func hasPrefixAt(hay, needle []rune, pos int) bool {
	for j, r := range needle {
		if hay[pos+j] != r {
			return false
		}
	}
	return true
}

// Search keeps a transcript's index in step with the query and tracks the
// current match for "N of M" navigation. The count observer fires only when
// the match count actually changes.
type Search struct {
	mu       sync.Mutex
	segments []Segment
	index    *Index
	current  int
	reported int
	onCount  func(count int)
}

// NewSearch creates a Search over segments. onCount may be nil.
func NewSearch(segments []Segment, onCount func(count int)) *Search {
	return &Search{
		segments: segments,
		index:    BuildIndex(segments, ""),
		onCount:  onCount,
	}
}

// SetQuery recomputes matches for query and moves the current match back
// to the first occurrence.
func (s *Search) SetQuery(query string) {
	s.mu.Lock()
	s.index = BuildIndex(s.segments, query)
	s.current = 0
	notify := s.takeCountChange()
	s.mu.Unlock()
	notify()
}

// SetSegments replaces the transcript and recomputes the current query.
func (s *Search) SetSegments(segments []Segment) {
	s.mu.Lock()
	s.segments = segments
	s.index = BuildIndex(segments, s.index.Query)
	if s.current >= s.index.Count() {
		s.current = 0
	}
	notify := s.takeCountChange()
	s.mu.Unlock()
	notify()
}

// Clear drops the query, resetting the current ordinal and count to zero.
func (s *Search) Clear() {
	s.SetQuery("")
}

// Next advances to the following match, wrapping from the last to the first.
// It returns the new current ordinal, or false when there are no matches.
func (s *Search) Next() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.index.Count()
	if n == 0 {
		return 0, false
	}
	s.current = (s.current + 1) % n
	return s.current, true
}

// Prev moves to the preceding match, wrapping from the first to the last.
func (s *Search) Prev() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.index.Count()
	if n == 0 {
		return 0, false
	}
	s.current = (s.current - 1 + n) % n
	return s.current, true
}

// Current returns the current match, or false when nothing matches.
func (s *Search) Current() (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index.Count() == 0 {
		return Match{}, false
	}
	return s.index.Matches[s.current], true
}

// ScrollTarget returns the ordinal a view should bring into view. It is a
// no-op (false) when there are no matches.
func (s *Search) ScrollTarget() (int, bool) {
	m, ok := s.Current()
	if !ok {
		return 0, false
	}
	return m.Ordinal, true
}

// Count returns the current number of matches.
func (s *Search) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Count()
}

// Index returns the current index. Callers must not modify it.
func (s *Search) Index() *Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// takeCountChange records the new count and returns the observer call to
// make once the lock is released. Callers hold s.mu.
func (s *Search) takeCountChange() func() {
	count := s.index.Count()
	if count == s.reported || s.onCount == nil {
		s.reported = count
		return func() {}
	}
	s.reported = count
	cb := s.onCount
	return func() { cb(count) }
}
