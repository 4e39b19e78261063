package ranking

// Fallback is the ranking used when the oracle cannot be consulted: the
// first Size candidates as given.
func Fallback(candidates []Candidate) []string {
	n := min(Size, len(candidates))
	out := make([]string, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.SchoolID)
	}
	return out
}

// Sanitize turns a proposed ranking into the authoritative one. Unknown ids
// are dropped, duplicates keep their first position, and the result is
// padded from the candidate order and cut to Size.
//
// The result has min(Size, distinct candidate ids) entries.
func Sanitize(proposed []string, candidates []Candidate) []string {
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.SchoolID] = struct{}{}
	}

	out := make([]string, 0, Size)
	used := make(map[string]struct{}, Size)
	take := func(id string) {
		if len(out) >= Size {
			return
		}
		if _, ok := known[id]; !ok {
			return
		}
		if _, dup := used[id]; dup {
			return
		}
		used[id] = struct{}{}
		out = append(out, id)
	}

	for _, id := range proposed {
		take(id)
	}
	for _, c := range candidates {
		take(c.SchoolID)
	}
	return out
}

// Unknown counts proposed ids that are not candidates.
func Unknown(proposed []string, candidates []Candidate) int {
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.SchoolID] = struct{}{}
	}
	n := 0
	for _, id := range proposed {
		if _, ok := known[id]; !ok {
			n++
		}
	}
	return n
}
