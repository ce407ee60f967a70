// Package reconcile matches two card element lists against each other.
//
// Matching is one-to-one: each pool element satisfies at most one source
// element per call, and the first matching pool element in list order wins.
// Both operations are deterministic for a given input order.
package reconcile

import (
	"strings"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
)

// MarkOwned marks a requirement already covered by an owned copy.
const MarkOwned collection.Marker = "O"

// Pair is one source element matched with the pool element that satisfied it.
type Pair struct {
	Source *collection.Element
	Pool   *collection.Element
}

// PartitionResult splits two lists into what only one side has and what both share.
type PartitionResult struct {
	SourceOnly   []*collection.Element
	PoolOnly     []*collection.Element
	Intersection []*collection.Element // Pool side of each match
	Pairs        []Pair
}

// Matched returns the source side of each match, in source order.
func (r *PartitionResult) Matched() []*collection.Element {
	out := make([]*collection.Element, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		out = append(out, p.Source)
	}
	return out
}

// Partition matches source against pool without touching either list.
//
// Source is walked once; for each source element the remaining pool is
// scanned for the first element matching under cmp. Matched pool elements
// leave the remainder and are appended to Intersection.
func Partition(source, pool []*collection.Element, cmp cards.Comparator) *PartitionResult {
	res := &PartitionResult{}
	remaining := append([]*collection.Element(nil), pool...)

	for _, s := range source {
		if s.Card == nil {
			res.SourceOnly = append(res.SourceOnly, s)
			continue
		}
		idx := -1
		for i, p := range remaining {
			if p.Card != nil && cmp(s.Card, p.Card) {
				idx = i
				break
			}
		}
		if idx < 0 {
			res.SourceOnly = append(res.SourceOnly, s)
			continue
		}
		p := remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		res.Intersection = append(res.Intersection, p)
		res.Pairs = append(res.Pairs, Pair{Source: s, Pool: p})
	}

	res.PoolOnly = remaining
	return res
}

// PartitionChain runs Partition once per comparator, feeding the unmatched
// remainders of each pass into the next. Intersections and pairs accumulate
// in pass order.
func PartitionChain(source, pool []*collection.Element, cmps ...cards.Comparator) *PartitionResult {
	res := &PartitionResult{SourceOnly: source, PoolOnly: pool}
	for _, cmp := range cmps {
		pass := Partition(res.SourceOnly, res.PoolOnly, cmp)
		res.SourceOnly = pass.SourceOnly
		res.PoolOnly = pass.PoolOnly
		res.Intersection = append(res.Intersection, pass.Intersection...)
		res.Pairs = append(res.Pairs, pass.Pairs...)
	}
	return res
}

// Filter restricts which source elements Annotate considers, by substring
// tests on their annotation text.
type Filter struct {
	Required []string // Every tag must be present
	Excluded []string // No tag may be present
}

// Allows reports whether text satisfies the filter.
func (f Filter) Allows(text string) bool {
	for _, tag := range f.Required {
		if !strings.Contains(text, tag) {
			return false
		}
	}
	for _, tag := range f.Excluded {
		if tag != "" && strings.Contains(text, tag) {
			return false
		}
	}
	return true
}

// AnnotateResult reports an Annotate call. Source and Pool are the input
// lists, annotated in place.
type AnnotateResult struct {
	Source  []*collection.Element
	Pool    []*collection.Element
	Pairs   []Pair
	Matched int
}

// Annotate marks matches in place instead of moving elements between lists.
//
// Each source element that does not carry marker and whose annotation text
// passes filter is matched against the first pool element that does not
// carry marker and was not consumed earlier in this call. Both elements of a
// match receive marker.
//
// Elements already carrying marker are skipped, so annotating data from a
// previous run yields wrong results; run against fresh copies.
func Annotate(source, pool []*collection.Element, cmp cards.Comparator, filter Filter, marker collection.Marker) *AnnotateResult {
	res := &AnnotateResult{Source: source, Pool: pool}
	consumed := make([]bool, len(pool))

	for _, s := range source {
		if s.Card == nil || s.Marked(marker) || !filter.Allows(s.AnnotationText()) {
			continue
		}
		for i, p := range pool {
			if consumed[i] || p.Card == nil || p.Marked(marker) {
				continue
			}
			if !cmp(s.Card, p.Card) {
				continue
			}
			consumed[i] = true
			s.Mark(marker)
			p.Mark(marker)
			res.Pairs = append(res.Pairs, Pair{Source: s, Pool: p})
			res.Matched++
			break
		}
	}

	return res
}

// Unmarked returns the elements of list that do not carry marker.
func Unmarked(list []*collection.Element, marker collection.Marker) []*collection.Element {
	out := make([]*collection.Element, 0, len(list))
	for _, e := range list {
		if !e.Marked(marker) {
			out = append(out, e)
		}
	}
	return out
}
