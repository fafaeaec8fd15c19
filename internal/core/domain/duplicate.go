package domain

// MatchTier identifies which detection stage produced a duplicate group.
type MatchTier string

// Detection tiers, in the fixed order they run.
const (
	TierExactHash   MatchTier = "Exact"
	TierContent     MatchTier = "Content"
	TierTitleSize   MatchTier = "Title+Size"
	TierSimilarName MatchTier = "Similar"
)

// DuplicateGroup is a set of records believed to represent the same
// underlying content. Groups are a derived, transient view recomputed on
// each scan; they are not persisted.
type DuplicateGroup struct {
	// Tier is the detection stage that formed the group.
	Tier MatchTier

	// Label is the keeper's display title (tiers 1-3) or the matched
	// title (tier 4), used in the report.
	Label string

	// IDs lists member document ids in discovery order. For tiers 1-3
	// the first element is the keeper; for tier 4 the group is the
	// two-element pair [match, source].
	IDs []string
}

// ScanResult is the outcome of one full duplicate scan.
type ScanResult struct {
	// Scanned is the number of records examined.
	Scanned int

	// Report is the human-readable multi-line summary.
	Report string

	// Candidates are the delete-candidate records in discovery order.
	// No record appears here twice.
	Candidates []DocumentRecord

	// Highlighted is the set of ids touched by any group, keepers
	// included, for visual confirmation.
	Highlighted map[string]struct{}

	// Groups lists every reported group in discovery order.
	Groups []DuplicateGroup
}

// CandidateCount returns the number of delete candidates found.
func (r *ScanResult) CandidateCount() int {
	return len(r.Candidates)
}
