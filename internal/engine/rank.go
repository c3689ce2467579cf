package engine

import "fmt"

// FailurePolicy decides what happens to failed targets in the final
// ranking.
type FailurePolicy string

// Supported failure policies. Drop excludes failed targets from the
// emitted set; Keep retains them as placeholder records with no payload.
// Ranks are dense (1..K, no gaps) under both.
const (
	FailurePolicyDrop FailurePolicy = "drop"
	FailurePolicyKeep FailurePolicy = "keep"
)

// ParseFailurePolicy validates a configured policy string.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case FailurePolicyDrop, FailurePolicyKeep:
		return FailurePolicy(s), nil
	case "":
		return FailurePolicyDrop, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want %q or %q)", s, FailurePolicyDrop, FailurePolicyKeep)
	}
}

// Rank assigns dense 1-based ranks over the retained record set. Input
// order is preserved: rank order equals original submission order of the
// results.
func Rank(results []FetchResult, policy FailurePolicy) []RankedRecord {
	records := make([]RankedRecord, 0, len(results))
	for _, r := range results {
		if !r.OK() && policy == FailurePolicyDrop {
			continue
		}
		records = append(records, RankedRecord{
			Rank:   len(records) + 1,
			Key:    r.Key,
			Kind:   r.Kind,
			Failed: !r.OK(),
			Result: r,
		})
	}
	return records
}
