// Package rating holds the review aggregation rules shared by every stats
// endpoint: mean rating rounded half-up to one decimal, and zero for no reviews.
package rating

// Stats is the derived aggregate for a set of reviews.
type Stats struct {
	TotalReviews  int64   `json:"totalReviews"`
	AverageRating float64 `json:"averageRating"`
}

// Tally is a pre-aggregated count and rating sum, as produced by GROUP BY queries.
type Tally struct {
	Count int64
	Sum   int64
}

// Add folds one rating into the tally.
func (t *Tally) Add(r int) {
	t.Count++
	t.Sum += int64(r)
}

// Stats converts the tally into its rounded aggregate.
func (t Tally) Stats() Stats {
	return FromTally(t.Count, t.Sum)
}

// FromTally builds stats from a count of reviews and the sum of their ratings.
func FromTally(count, sum int64) Stats {
	return Stats{TotalReviews: count, AverageRating: RoundedMean(sum, count)}
}

// Summarize aggregates a list of ratings.
func Summarize(ratings []int) Stats {
	var t Tally
	for _, r := range ratings {
		t.Add(r)
	}
	return t.Stats()
}

// RoundedMean returns sum/count rounded half-up to one decimal digit.
// It works on integers so that values such as 4.25 or 4.35 land on the
// expected side instead of wherever float error puts them.
func RoundedMean(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	// floor(10*sum/count + 1/2) == floor((20*sum + count) / (2*count)) for non-negative sums
	num := 20*sum + count
	den := 2 * count
	tenths := num / den
	if num%den != 0 && num < 0 {
		tenths--
	}
	return float64(tenths) / 10
}

// Fill returns stats for every requested id. Ids without a tally map to the
// zero aggregate so that callers can index the result without checking presence.
func Fill(ids []string, tallies map[string]Tally) map[string]Stats {
	out := make(map[string]Stats, len(ids))
	for _, id := range ids {
		out[id] = tallies[id].Stats()
	}
	return out
}

// Dedupe drops repeated ids while keeping first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
