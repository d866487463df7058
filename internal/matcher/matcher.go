// Package matcher decides whether two face descriptors belong to the same
// person.
package matcher

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/faceauth/internal/descriptor"
)

// TieBreak selects one record when several stored descriptors are under the
// threshold.
type TieBreak string

const (
	// TieBreakClosest picks the candidate with the smallest distance. Equal
	// distances resolve to the earliest candidate in scan order.
	TieBreakClosest TieBreak = "closest"
	// TieBreakFirst picks the earliest candidate in scan order.
	TieBreakFirst TieBreak = "first"
)

// ParseTieBreak validates a configured policy name.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case TieBreakClosest, TieBreakFirst:
		return TieBreak(s), nil
	case "":
		return TieBreakClosest, nil
	default:
		return "", fmt.Errorf("unknown tie-break policy %q", s)
	}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b descriptor.Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", descriptor.ErrLengthMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Matcher applies a distance threshold and a tie-break policy.
type Matcher struct {
	threshold float64
	policy    TieBreak
}

// New returns a Matcher. threshold must be positive.
func New(threshold float64, policy TieBreak) (*Matcher, error) {
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("match threshold must be a positive number, got %v", threshold)
	}
	if _, err := ParseTieBreak(string(policy)); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = TieBreakClosest
	}
	return &Matcher{threshold: threshold, policy: policy}, nil
}

// Threshold returns the configured threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Policy returns the configured tie-break policy.
func (m *Matcher) Policy() TieBreak { return m.policy }

// IsMatch reports whether distance is strictly below the threshold.
func (m *Matcher) IsMatch(distance float64) bool {
	return distance < m.threshold
}

// Candidate is one scored stored descriptor. Index is its position in scan
// order.
type Candidate struct {
	Index    int
	Distance float64
}

// Select returns the position in candidates of the winning match under the
// configured policy, or -1 when no candidate is under the threshold.
// Candidates may be given in any order.
func (m *Matcher) Select(candidates []Candidate) int {
	best := -1
	for i, c := range candidates {
		if !m.IsMatch(c.Distance) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := candidates[best]
		switch m.policy {
		case TieBreakFirst:
			if c.Index < b.Index {
				best = i
			}
		default:
			if c.Distance < b.Distance || (c.Distance == b.Distance && c.Index < b.Index) {
				best = i
			}
		}
	}
	return best
}
