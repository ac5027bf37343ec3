package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/pagecrop/internal/util/sets"
)

// PageRange is an inclusive, contiguous range of user-facing page numbers.
type PageRange struct {
	First int
	Last  int
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// Pages lists the range in ascending order.
func (r PageRange) Pages() []int {
	out := make([]int, 0, r.Len())
	for p := r.First; p <= r.Last; p++ {
		out = append(out, p)
	}
	return out
}

// Contains reports whether page lies inside the range.
func (r PageRange) Contains(page int) bool {
	return page >= r.First && page <= r.Last
}

func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}

// PageSet is a union of inclusive page intervals. Intervals are kept as
// written and only expanded against a concrete range.
type PageSet []PageRange

// ParsePageSet parses a comma separated list of pages and inclusive ranges
// such as "2,5-7". Ranges are not expanded, so "1-2000000000" is cheap.
func ParsePageSet(list string) (PageSet, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var set PageSet
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q: %w", part, err)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q: %w", part, err)
			}
			if end < start {
				return nil, fmt.Errorf("invalid page range %q: end before start", part)
			}
		}
		set = append(set, PageRange{First: start, Last: end})
	}
	return set, nil
}

// Has reports whether page falls in any interval.
func (s PageSet) Has(page int) bool {
	for _, iv := range s {
		if iv.Contains(page) {
			return true
		}
	}
	return false
}

// Within returns the pages of s inside r, sorted and deduplicated. Pages
// outside r are dropped before any interval is expanded.
func (s PageSet) Within(r PageRange) []int {
	seen := sets.New[int]()
	for _, iv := range s {
		lo, hi := max(iv.First, r.First), min(iv.Last, r.Last)
		for p := lo; p <= hi; p++ {
			seen.Add(p)
		}
	}
	return sets.Sorted(seen)
}
