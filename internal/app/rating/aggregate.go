package rating

import (
	"math"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// Aggregate folds a set of votes into a DaySummary. Pure and
// order-independent: same multiset in, same summary out. Votes with an
// out-of-range rating are skipped and excluded from the total; intake should
// have rejected them, the aggregator does not trust its input.
func Aggregate(day string, votes []domain.Vote) domain.DaySummary {
	counts := make(map[domain.Rating]int64, len(domain.Ratings()))
	for _, r := range domain.Ratings() {
		counts[r] = 0
	}

	for _, vote := range votes {
		if vote.Rating.Valid() {
			counts[vote.Rating]++
		}
	}

	return summaryFromCounts(day, counts)
}

// summaryFromCounts derives the total and per-bucket percentages. Percentages
// round half-up per bucket independently, so they need not sum to 100
// (1/3,1/3,1/3 yields 33,33,33).
func summaryFromCounts(day string, counts map[domain.Rating]int64) domain.DaySummary {
	var total int64
	for _, r := range domain.Ratings() {
		total += counts[r]
	}

	percentages := make(map[domain.Rating]int, len(domain.Ratings()))
	for _, r := range domain.Ratings() {
		if total == 0 {
			percentages[r] = 0
			continue
		}
		percentages[r] = int(math.Round(100 * float64(counts[r]) / float64(total)))
	}

	return domain.DaySummary{
		Day:         day,
		Total:       total,
		Counts:      counts,
		Percentages: percentages,
	}
}
