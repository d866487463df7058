package models

// MatchResult is the outcome of one login attempt. It is not persisted.
type MatchResult struct {
	Matched  bool
	UserName string
	Distance float64
}
