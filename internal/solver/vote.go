package solver

// Candidate is one normalized recognition result paired with the mode that
// produced it. Candidates are ordered by configured mode evaluation order.
type Candidate struct {
	Text string
	Mode string
}

// VoteResult is the winning candidate and how many attempts agreed on it
type VoteResult struct {
	Text    string
	Support int
}

// Vote aggregates candidates into a single answer.
//
// Candidates shorter than minLength are discarded. Among the rest, the
// string with the highest exact-match count wins; ties are broken in favor
// of the candidate seen earliest in the configured mode evaluation order.
// The first-seen rule is deliberate: picking "most common" out of an
// unordered count map makes tie resolution depend on map iteration order.
//
// Returns false when no candidate qualifies.
func Vote(candidates []Candidate, minLength int) (VoteResult, bool) {
	counts := make(map[string]int, len(candidates))

	for _, c := range candidates {
		if len(c.Text) < minLength {
			continue
		}
		counts[c.Text]++
	}

	if len(counts) == 0 {
		return VoteResult{}, false
	}

	best := VoteResult{}
	for _, c := range candidates {
		if len(c.Text) < minLength {
			continue
		}
		// Strict comparison keeps the earliest candidate on equal counts
		if counts[c.Text] > best.Support {
			best = VoteResult{Text: c.Text, Support: counts[c.Text]}
		}
	}

	return best, true
}
